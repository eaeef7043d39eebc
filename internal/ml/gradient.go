package ml

import "math"

const (
	Beta1 = 0.9
	Beta2 = 0.999
	Eps   = 1e-8
)

// Gradient accumulates raw gradient values between optimizer steps and keeps
// the adaptive moment estimates across them.
type Gradient struct {
	Value float64
	M1    float64
	M2    float64
}

// Calculate returns the optimizer step for the accumulated value at the
// given (possibly scheduled) learning rate.
func (g *Gradient) Calculate(learningRate float64) float64 {

	if g.Value == 0 {
		// nothing to calculate
		return 0
	}

	g.M1 = g.M1*Beta1 + g.Value*(1-Beta1)
	g.M2 = g.M2*Beta2 + (g.Value*g.Value)*(1-Beta2)

	return learningRate * g.M1 / (math.Sqrt(g.M2) + Eps)
}

// Gradients is a row-major matrix of accumulators matching the layout of the
// parameter matrix they update.
type Gradients struct {
	Data []Gradient
	Rows int
	Cols int
}

func NewGradients(rows, cols int) Gradients {
	return Gradients{
		Data: make([]Gradient, rows*cols),
		Rows: rows,
		Cols: cols,
	}
}

func (g *Gradients) Add(row, col int, delta float64) {
	g.Data[row*g.Cols+col].Value += delta
}

// AddDense accumulates a row-major dense gradient of the same shape.
func (g *Gradients) AddDense(data []float64) {
	for i := range g.Data {
		g.Data[i].Value += data[i]
	}
}

// Apply performs one optimizer step on the row-major parameter slice and
// clears the accumulated values.
func (g *Gradients) Apply(params []float64, learningRate float64) {
	for i := range g.Data {
		params[i] -= g.Data[i].Calculate(learningRate)
		g.Data[i].Value = 0
	}
}
