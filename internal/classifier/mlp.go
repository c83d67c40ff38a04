package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type activation func(float64) float64

func parseActivation(name string) (activation, error) {
	switch name {
	case "", "relu":
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case "tanh":
		return math.Tanh, nil
	case "logistic":
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, nil
	case "identity":
		return func(v float64) float64 { return v }, nil
	default:
		return nil, fmt.Errorf("unsupported activation: %s", name)
	}
}

type dense struct {
	weights *mat.Dense
	biases  []float64
}

// MLP is the forward pass of a trained multi-layer perceptron classifier.
type MLP struct {
	layers []dense
	hidden activation
}

// NewMLP builds the network from its exported layers.
func NewMLP(spec ClassifierSpec) (*MLP, error) {
	act, err := parseActivation(spec.Activation)
	if err != nil {
		return nil, err
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("classifier has no layers")
	}

	m := &MLP{hidden: act}
	for i, l := range spec.Layers {
		in, out := len(l.Weights), len(l.Biases)
		if in == 0 || out == 0 {
			return nil, fmt.Errorf("layer %d is empty", i)
		}
		data := make([]float64, 0, in*out)
		for r, row := range l.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("layer %d row %d has %d weights, want %d", i, r, len(row), out)
			}
			data = append(data, row...)
		}
		if i > 0 {
			_, prevOut := m.layers[i-1].weights.Dims()
			if prevOut != in {
				return nil, fmt.Errorf("layer %d expects %d inputs, previous layer yields %d", i, in, prevOut)
			}
		}
		m.layers = append(m.layers, dense{
			weights: mat.NewDense(in, out, data),
			biases:  append([]float64(nil), l.Biases...),
		})
	}
	return m, nil
}

// InputDim is the number of features the first layer expects.
func (m *MLP) InputDim() int {
	r, _ := m.layers[0].weights.Dims()
	return r
}

// Classes is the number of labels the network distinguishes.
func (m *MLP) Classes() int {
	_, c := m.layers[len(m.layers)-1].weights.Dims()
	if c == 1 {
		return 2
	}
	return c
}

// Predict returns the class index for each row of x.
func (m *MLP) Predict(x *mat.Dense) ([]int, error) {
	rows, cols := x.Dims()
	if cols != m.InputDim() {
		return nil, fmt.Errorf("model expects %d features, got %d", m.InputDim(), cols)
	}

	var act mat.Matrix = x
	last := len(m.layers) - 1
	var out *mat.Dense
	for i, l := range m.layers {
		out = new(mat.Dense)
		out.Mul(act, l.weights)
		out.Apply(func(_, j int, v float64) float64 {
			v += l.biases[j]
			if i < last {
				return m.hidden(v)
			}
			return v
		}, out)
		act = out
	}

	preds := make([]int, rows)
	for r := 0; r < rows; r++ {
		row := out.RawRowView(r)
		if len(row) == 1 {
			if row[0] > 0 {
				preds[r] = 1
			}
			continue
		}
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		preds[r] = best
	}
	return preds, nil
}
