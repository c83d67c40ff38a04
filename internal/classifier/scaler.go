package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StandardScaler applies (x - mean) / scale per feature column.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler copies the parameters; a zero scale is treated as 1.
func NewStandardScaler(mean, scale []float64) *StandardScaler {
	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != len(s.mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.mean), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return out, nil
}
