package pose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrActionNotFound is returned when a store holds no pose data for an action.
var ErrActionNotFound = errors.New("pose data not found for action")

// Keypoint is one joint estimate in image coordinates.
type Keypoint struct {
	X          float32
	Y          float32
	Confidence float32
}

// Detection is one frame's pose estimate in joint order (17 COCO joints for
// the reference pose model). A nil Detection means no person was detected.
type Detection []Keypoint

// Frame is a single pose record of a clip.
type Frame struct {
	Index     int
	Detection Detection
}

// Store reads per-frame detections keyed by action and frame index.
type Store interface {
	// Actions lists the actions that have pose data, sorted by name.
	Actions(ctx context.Context) ([]string, error)

	// LoadFrames returns the frames of one action ordered by frame index.
	// A missing action yields ErrActionNotFound; an action that exists but
	// holds no frames yields an empty slice.
	LoadFrames(ctx context.Context, action string) ([]Frame, error)
}

// Writer persists frames for an action.
type Writer interface {
	PutFrames(ctx context.Context, action string, frames []Frame) error
}

// Flatten returns the detection as x, y, confidence triples in row-major order.
func (d Detection) Flatten() []float32 {
	out := make([]float32, 0, len(d)*3)
	for _, kp := range d {
		out = append(out, kp.X, kp.Y, kp.Confidence)
	}
	return out
}

// MarshalJSON writes [[x, y, c], ...] or null when nothing was detected.
func (d Detection) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	rows := make([][3]float32, len(d))
	for i, kp := range d {
		rows[i] = [3]float32{kp.X, kp.Y, kp.Confidence}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON accepts null, a list of [x, y, c] rows, or a flat list whose
// length is a multiple of three.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("keypoints: %w", err)
	}
	if raw == nil {
		*d = nil
		return nil
	}

	flat := make([]float32, 0, len(raw)*3)
	for i, item := range raw {
		var row []float32
		if err := json.Unmarshal(item, &row); err == nil {
			if len(row) != 3 {
				return fmt.Errorf("keypoints: row %d has %d values, want 3", i, len(row))
			}
			flat = append(flat, row...)
			continue
		}
		var v float32
		if err := json.Unmarshal(item, &v); err != nil {
			return fmt.Errorf("keypoints: element %d is neither a row nor a number", i)
		}
		flat = append(flat, v)
	}
	if len(flat)%3 != 0 {
		return fmt.Errorf("keypoints: %d values is not a multiple of 3", len(flat))
	}

	det := make(Detection, 0, len(flat)/3)
	for i := 0; i < len(flat); i += 3 {
		det = append(det, Keypoint{X: flat[i], Y: flat[i+1], Confidence: flat[i+2]})
	}
	*d = det
	return nil
}

// record is the on-disk body of one frame file.
type record struct {
	Keypoints Detection `json:"keypoints"`
}

// DecodeRecord parses a frame file body.
func DecodeRecord(data []byte) (Detection, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.Keypoints, nil
}

// EncodeRecord renders a frame file body.
func EncodeRecord(det Detection) ([]byte, error) {
	return json.Marshal(record{Keypoints: det})
}
