package nn

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Tensor is a named parameter value inside a checkpoint. Data is row-major.
type Tensor struct {
	Rows int
	Cols int
	Data []float64
}

func weightName(layer int) string { return fmt.Sprintf("fc%d.weight", layer+1) }
func biasName(layer int) string   { return fmt.Sprintf("fc%d.bias", layer+1) }

// StateDict returns a copy of every parameter keyed fcN.weight / fcN.bias.
func (m *Model) StateDict() map[string]Tensor {
	var states = make(map[string]Tensor)
	for i, layer := range m.layers {
		var rows, cols = layer.weights.Dims()
		states[weightName(i)] = Tensor{
			Rows: rows,
			Cols: cols,
			Data: append([]float64(nil), layer.weights.RawMatrix().Data...),
		}
		states[biasName(i)] = Tensor{
			Rows: len(layer.biases),
			Cols: 1,
			Data: append([]float64(nil), layer.biases...),
		}
	}
	return states
}

// SetStateDict replaces the model parameters. Every parameter must be present
// with an exactly matching shape; unknown names are rejected.
func (m *Model) SetStateDict(states map[string]Tensor) error {
	var used = make(map[string]bool)
	for i, layer := range m.layers {
		var rows, cols = layer.weights.Dims()
		w, err := lookupTensor(states, weightName(i), rows, cols)
		if err != nil {
			return err
		}
		copy(layer.weights.RawMatrix().Data, w.Data)
		used[weightName(i)] = true

		b, err := lookupTensor(states, biasName(i), len(layer.biases), 1)
		if err != nil {
			return err
		}
		copy(layer.biases, b.Data)
		used[biasName(i)] = true
	}
	for name := range states {
		if !used[name] {
			return fmt.Errorf("unexpected parameter %q in checkpoint", name)
		}
	}
	return nil
}

func lookupTensor(states map[string]Tensor, name string, rows, cols int) (Tensor, error) {
	var t, ok = states[name]
	if !ok {
		return Tensor{}, fmt.Errorf("checkpoint is missing parameter %q", name)
	}
	if t.Rows != rows || t.Cols != cols || len(t.Data) != rows*cols {
		return Tensor{}, fmt.Errorf("parameter %q has shape (%v,%v), model expects (%v,%v)",
			name, t.Rows, t.Cols, rows, cols)
	}
	return t, nil
}

// SaveCheckpoint writes the gob-encoded state dict, creating the directory
// when needed.
func (m *Model) SaveCheckpoint(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m.StateDict())
}

func (m *Model) LoadCheckpoint(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var states map[string]Tensor
	if err := gob.NewDecoder(f).Decode(&states); err != nil {
		return fmt.Errorf("decode checkpoint %v: %v", path, err)
	}
	return m.SetStateDict(states)
}
