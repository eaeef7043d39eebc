package ml

import (
	"math"
	"testing"
)

func TestActivations(t *testing.T) {
	tests := []struct {
		name      string
		fn        ActivationFn
		x         float64
		sigma     float64
		prime     float64
	}{
		{"relu positive", &ReLuActivation{}, 2.5, 2.5, 1},
		{"relu negative", &ReLuActivation{}, -0.5, 0, 0},
		{"relu zero", &ReLuActivation{}, 0, 0, 0},
		{"identity", &IdentityActivation{}, -3.25, -3.25, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn.Sigma(tt.x); got != tt.sigma {
				t.Errorf("Sigma(%v) = %v, want %v", tt.x, got, tt.sigma)
			}
			if got := tt.fn.SigmaPrime(tt.x); got != tt.prime {
				t.Errorf("SigmaPrime(%v) = %v, want %v", tt.x, got, tt.prime)
			}
		})
	}
}

func TestMSECost(t *testing.T) {
	var cost = &MSECost{}
	if got := cost.Cost(0.5, 0.2); math.Abs(got-0.09) > 1e-12 {
		t.Errorf("Cost = %v, want 0.09", got)
	}
	if got := cost.CostPrime(0.5, 0.2); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("CostPrime = %v, want 0.6", got)
	}
}

func TestGradientZeroValue(t *testing.T) {
	var g = Gradient{}
	if step := g.Calculate(0.001); step != 0 {
		t.Errorf("step for zero gradient = %v, want 0", step)
	}
	if g.M1 != 0 || g.M2 != 0 {
		t.Error("zero gradient touched the moment estimates")
	}
}

func TestGradientStepDirection(t *testing.T) {
	var g = Gradient{Value: 0.5}
	var step = g.Calculate(0.001)
	if step <= 0 {
		t.Errorf("positive gradient produced step %v", step)
	}
	g.Value = -0.5
	if step = g.Calculate(0.001); step >= 0 {
		t.Errorf("negative gradient produced step %v", step)
	}
}

func TestGradientsApply(t *testing.T) {
	var g = NewGradients(2, 3)
	g.Add(1, 2, 1.0)
	var params = make([]float64, 6)
	g.Apply(params, 0.001)
	for i, p := range params {
		if i == 5 {
			if p >= 0 {
				t.Errorf("params[5] = %v, want a negative step", p)
			}
			continue
		}
		if p != 0 {
			t.Errorf("params[%v] = %v, want 0", i, p)
		}
	}
	// accumulators must be cleared after a step
	for i := range g.Data {
		if g.Data[i].Value != 0 {
			t.Errorf("accumulator %v still holds %v", i, g.Data[i].Value)
		}
	}
}

func TestGradientsApplyScalesWithRate(t *testing.T) {
	var a = Gradient{Value: 1}
	var b = Gradient{Value: 1}
	var stepA = a.Calculate(0.001)
	var stepB = b.Calculate(0.0005)
	if math.Abs(stepA-2*stepB) > 1e-12 {
		t.Errorf("steps %v and %v do not scale with the rate", stepA, stepB)
	}
}
