// Package features turns per-frame pose detections into fixed-length vectors.
package features

import "github.com/zhe.chen/pose-action-reasoner/internal/pose"

// DefaultDim is 17 COCO joints times (x, y, confidence).
const DefaultDim = 51

// Encode maps one detection to exactly dim values. The flattened keypoints
// are truncated when longer than dim and zero-padded on the right when
// shorter; a nil detection yields all zeros. A negative dim is treated as 0.
func Encode(det pose.Detection, dim int) []float32 {
	if dim < 0 {
		dim = 0
	}
	vec := make([]float32, dim)
	if det == nil {
		return vec
	}
	copy(vec, det.Flatten())
	return vec
}

// EncodeClip encodes every frame of a clip in order.
func EncodeClip(frames []pose.Frame, dim int) [][]float32 {
	out := make([][]float32, len(frames))
	for i, f := range frames {
		out[i] = Encode(f.Detection, dim)
	}
	return out
}
