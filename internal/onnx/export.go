package onnx

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sailsim/sailtrain/internal/dataset"
	"github.com/sailsim/sailtrain/internal/nn"
)

// ONNX ModelProto layout, onnx.proto field numbers:
// - ModelProto: ir_version=1, producer_name=2, graph=7, opset_import=8
// - OperatorSetIdProto: domain=1, version=2 (default domain = empty string, omitted)
// - GraphProto: node=1, name=2, initializer=5, input=11, output=12
// - NodeProto: input=1, output=2, name=3, op_type=4, attribute=5
// - AttributeProto: name=1, i=3, type=20 (INT=2)
// - TensorProto: dims=1, data_type=2 (FLOAT=1), name=8, raw_data=9 (little-endian)
// - ValueInfoProto: name=1, type=2
// - TypeProto: tensor_type=1; TypeProto.Tensor: elem_type=1, shape=2
// - TensorShapeProto: dim=1; Dimension: dim_value=1, dim_param=2
const (
	irVersion    = 8
	opsetVersion = 17

	floatDataType = 1
	intAttribute  = 2

	// InputName and OutputName are the tensor names the inference server
	// binds to.
	InputName  = "features"
	OutputName = "heading"

	// batchDim is the symbolic name of the dynamic batch axis.
	batchDim = "batch"
)

// Export serializes the model as an ONNX graph with one Gemm node per layer
// and a Relu between hidden layers. The batch axis of both the graph input
// and output is dynamic, so the consumer can submit variable-size batches.
func Export(m *nn.Model, path string) error {
	graph, err := buildGraph(m)
	if err != nil {
		return err
	}

	var model = &message{}
	model.Int64(1, irVersion)
	model.String(2, "sailtrain")
	model.Message(7, graph)
	var opset = &message{}
	opset.Int64(2, opsetVersion)
	model.Message(8, opset)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return os.WriteFile(path, model.buf, 0o644)
}

func buildGraph(m *nn.Model) (*message, error) {
	var layers = m.Layers()
	if err := checkTopology(layers); err != nil {
		return nil, err
	}

	var g = &message{}
	var cur = InputName
	for i := range layers {
		var name = fmt.Sprintf("fc%d", i+1)
		var last = i == len(layers)-1

		var gemmOut = name + "_out"
		if last {
			gemmOut = OutputName
		}
		g.Message(1, gemmNode(name, cur, name+".weight", name+".bias", gemmOut))
		cur = gemmOut
		if !last {
			var reluOut = name + "_relu"
			g.Message(1, reluNode(name+"_act", cur, reluOut))
			cur = reluOut
		}
	}
	g.String(2, "sailing_heading")

	for i, layer := range layers {
		var outputSize, inputSize = layer.Dims()
		g.Message(5, tensor(fmt.Sprintf("fc%d.weight", i+1),
			[]int{outputSize, inputSize}, layer.Weights().RawMatrix().Data))
		g.Message(5, tensor(fmt.Sprintf("fc%d.bias", i+1),
			[]int{outputSize}, layer.Biases()))
	}

	g.Message(11, valueInfo(InputName, dataset.InputDim))
	g.Message(12, valueInfo(OutputName, dataset.OutputDim))
	return g, nil
}

func checkTopology(layers []*nn.Layer) error {
	if len(layers) == 0 {
		return fmt.Errorf("model has no layers")
	}
	var prev = dataset.InputDim
	for i, layer := range layers {
		var outputSize, inputSize = layer.Dims()
		if inputSize != prev {
			return fmt.Errorf("layer %v expects %v inputs, previous layer produces %v",
				i+1, inputSize, prev)
		}
		prev = outputSize
	}
	if prev != dataset.OutputDim {
		return fmt.Errorf("model produces %v outputs, want %v", prev, dataset.OutputDim)
	}
	return nil
}

// gemmNode emits Y = X*W^T + B via the Gemm op with transB=1, which matches
// the (outputSize, inputSize) weight layout directly.
func gemmNode(name, x, w, b, out string) *message {
	var n = &message{}
	n.String(1, x)
	n.String(1, w)
	n.String(1, b)
	n.String(2, out)
	n.String(3, name)
	n.String(4, "Gemm")
	var attr = &message{}
	attr.String(1, "transB")
	attr.Int64(3, 1)
	attr.Int64(20, intAttribute)
	n.Message(5, attr)
	return n
}

func reluNode(name, in, out string) *message {
	var n = &message{}
	n.String(1, in)
	n.String(2, out)
	n.String(3, name)
	n.String(4, "Relu")
	return n
}

// tensor emits a float32 initializer; parameters train in float64 and are
// narrowed here.
func tensor(name string, dims []int, data []float64) *message {
	var t = &message{}
	for _, d := range dims {
		t.Int64(1, int64(d))
	}
	t.Int64(2, floatDataType)
	t.String(8, name)
	var raw = make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(float32(v)))
	}
	t.Bytes(9, raw)
	return t
}

// valueInfo declares a float32 tensor of shape (batch, width) with the batch
// axis left symbolic.
func valueInfo(name string, width int) *message {
	var batch = &message{}
	batch.String(2, batchDim)
	var fixed = &message{}
	fixed.Int64(1, int64(width))
	var shape = &message{}
	shape.Message(1, batch)
	shape.Message(1, fixed)

	var tensorType = &message{}
	tensorType.Int64(1, floatDataType)
	tensorType.Message(2, shape)
	var typ = &message{}
	typ.Message(1, tensorType)

	var vi = &message{}
	vi.String(1, name)
	vi.Message(2, typ)
	return vi
}
