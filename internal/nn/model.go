package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sailsim/sailtrain/internal/dataset"
	"github.com/sailsim/sailtrain/internal/ml"
)

// layerSizes is the fixed topology of the heading model. The checkpoint
// layout and the exported graph both assume it.
var layerSizes = []int{dataset.InputDim, 128, 64, 32, dataset.OutputDim}

// Model maps a batch of feature rows to sin/cos heading components. ReLU
// after every hidden layer, identity on the output.
type Model struct {
	layers []*Layer
}

func NewModel(rnd *rand.Rand) *Model {
	var layers = make([]*Layer, 0, len(layerSizes)-1)
	for i := 0; i+1 < len(layerSizes); i++ {
		var layer *Layer
		if i == len(layerSizes)-2 {
			layer = NewLayer(layerSizes[i], layerSizes[i+1], &ml.IdentityActivation{}).
				InitWeightsLinear(rnd)
		} else {
			layer = NewLayer(layerSizes[i], layerSizes[i+1], &ml.ReLuActivation{}).
				InitWeightsReLU(rnd)
		}
		layers = append(layers, layer)
	}
	return &Model{layers: layers}
}

func (m *Model) Layers() []*Layer { return m.layers }

// Forward maps a (batch, 19) matrix to (batch, 2) heading components.
func (m *Model) Forward(x *mat.Dense) *mat.Dense {
	for _, layer := range m.layers {
		x = layer.Forward(x)
	}
	return x
}

// Backward propagates the cost gradient with respect to the output through
// every layer, accumulating parameter gradients.
func (m *Model) Backward(outputError *mat.Dense) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		outputError = m.layers[i].Backward(outputError)
	}
}

func (m *Model) ApplyGradients(learningRate float64) {
	for _, layer := range m.layers {
		layer.ApplyGradients(learningRate)
	}
}
