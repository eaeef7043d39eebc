package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sailsim/sailtrain/internal/ml"
)

// Layer is one dense affine transform with an elementwise activation,
// operating on whole mini-batches.
type Layer struct {
	activation ml.ActivationFn
	weights    *mat.Dense // outputSize x inputSize
	biases     []float64  // outputSize
	wGradients ml.Gradients
	bGradients ml.Gradients

	// intermediates of the last Forward, consumed by Backward
	input  *mat.Dense
	preact *mat.Dense
}

func NewLayer(inputSize, outputSize int, activation ml.ActivationFn) *Layer {
	return &Layer{
		activation: activation,
		weights:    mat.NewDense(outputSize, inputSize, nil),
		biases:     make([]float64, outputSize),
		wGradients: ml.NewGradients(outputSize, inputSize),
		bGradients: ml.NewGradients(outputSize, 1),
	}
}

func (l *Layer) InitWeightsReLU(rnd *rand.Rand) *Layer {
	var _, inputSize = l.weights.Dims()
	ml.InitUniform(rnd, l.weights.RawMatrix().Data, 2.0/float64(inputSize))
	return l
}

func (l *Layer) InitWeightsLinear(rnd *rand.Rand) *Layer {
	var outputSize, inputSize = l.weights.Dims()
	ml.InitUniform(rnd, l.weights.RawMatrix().Data, 2.0/float64(inputSize+outputSize))
	return l
}

// Dims returns (outputSize, inputSize).
func (l *Layer) Dims() (outputSize, inputSize int) {
	return l.weights.Dims()
}

// Weights returns the outputSize x inputSize weight matrix. Shared, not a copy.
func (l *Layer) Weights() *mat.Dense { return l.weights }

// Biases returns the bias vector. Shared, not a copy.
func (l *Layer) Biases() []float64 { return l.biases }

// Forward computes activation(x*W^T + b) for a batch of rows and keeps the
// intermediates needed by Backward.
func (l *Layer) Forward(x *mat.Dense) *mat.Dense {
	var batch, _ = x.Dims()
	var outputSize, _ = l.weights.Dims()

	l.input = x
	l.preact = mat.NewDense(batch, outputSize, nil)
	l.preact.Mul(x, l.weights.T())

	var output = mat.NewDense(batch, outputSize, nil)
	for i := 0; i < batch; i++ {
		var z = l.preact.RawRowView(i)
		var a = output.RawRowView(i)
		for j := range z {
			z[j] += l.biases[j]
			a[j] = l.activation.Sigma(z[j])
		}
	}
	return output
}

// Backward takes the cost gradient with respect to this layer's activations,
// accumulates parameter gradients and returns the gradient with respect to
// the layer input. Must follow a Forward on the same batch.
func (l *Layer) Backward(outputError *mat.Dense) *mat.Dense {
	var batch, outputSize = outputError.Dims()
	var _, inputSize = l.weights.Dims()

	var delta = mat.NewDense(batch, outputSize, nil)
	for i := 0; i < batch; i++ {
		var e = outputError.RawRowView(i)
		var z = l.preact.RawRowView(i)
		var d = delta.RawRowView(i)
		for j := range d {
			d[j] = e[j] * l.activation.SigmaPrime(z[j])
		}
	}

	var wGrad = mat.NewDense(outputSize, inputSize, nil)
	wGrad.Mul(delta.T(), l.input)
	l.wGradients.AddDense(wGrad.RawMatrix().Data)
	for i := 0; i < batch; i++ {
		var d = delta.RawRowView(i)
		for j := range d {
			l.bGradients.Add(j, 0, d[j])
		}
	}

	var inputError = mat.NewDense(batch, inputSize, nil)
	inputError.Mul(delta, l.weights)
	return inputError
}

func (l *Layer) ApplyGradients(learningRate float64) {
	l.wGradients.Apply(l.weights.RawMatrix().Data, learningRate)
	l.bGradients.Apply(l.biases, learningRate)
}
