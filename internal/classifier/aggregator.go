package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scaler standardizes a batch of feature rows.
type Scaler interface {
	Transform(x *mat.Dense) (*mat.Dense, error)
}

// Model predicts a label index for every row of a batch.
type Model interface {
	Predict(x *mat.Dense) ([]int, error)
}

// Prediction is the clip-level decision plus its per-label frame counts.
// Label is empty when the clip had no frames.
type Prediction struct {
	Label  string         `json:"label"`
	Counts map[string]int `json:"counts"`
	Frames int            `json:"frames"`
}

// Aggregator runs the scaler and model over a clip and takes a majority vote.
type Aggregator struct {
	scaler Scaler
	model  Model
	roster []string
}

// NewAggregator wires a scaler and model to the roster the model was trained on.
func NewAggregator(scaler Scaler, model Model, roster []string) *Aggregator {
	return &Aggregator{
		scaler: scaler,
		model:  model,
		roster: append([]string(nil), roster...),
	}
}

// ClassifyClip predicts every frame vector as one batch and returns the
// majority label. An empty clip returns an empty label and empty counts.
func (a *Aggregator) ClassifyClip(vectors [][]float32) (Prediction, error) {
	pred := Prediction{Counts: map[string]int{}}
	if len(vectors) == 0 {
		return pred, nil
	}

	cols := len(vectors[0])
	if cols == 0 {
		return pred, fmt.Errorf("frame vectors are empty")
	}
	data := make([]float64, 0, len(vectors)*cols)
	for i, v := range vectors {
		if len(v) != cols {
			return pred, fmt.Errorf("frame %d has %d features, want %d", i, len(v), cols)
		}
		for _, f := range v {
			data = append(data, float64(f))
		}
	}
	x := mat.NewDense(len(vectors), cols, data)

	scaled, err := a.scaler.Transform(x)
	if err != nil {
		return pred, fmt.Errorf("scale features: %w", err)
	}
	indices, err := a.model.Predict(scaled)
	if err != nil {
		return pred, fmt.Errorf("predict frames: %w", err)
	}

	for _, idx := range indices {
		pred.Counts[a.label(idx)]++
	}
	pred.Frames = len(indices)
	pred.Label = Majority(pred.Counts)
	return pred, nil
}

func (a *Aggregator) label(idx int) string {
	if idx < 0 || idx >= len(a.roster) {
		return fmt.Sprintf("unknown_%d", idx)
	}
	return a.roster[idx]
}

// Majority returns the label with the largest count. Ties go to the
// lexicographically smallest label so the result never depends on map order.
func Majority(counts map[string]int) string {
	best, bestCount := "", 0
	for label, n := range counts {
		if n > bestCount || (n == bestCount && n > 0 && label < best) {
			best, bestCount = label, n
		}
	}
	return best
}
