package client

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/zhe.chen/pose-action-reasoner/internal/pose"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// keypointPaths are tried in order to locate per-person keypoints in a pose
// tool response.
var keypointPaths = []string{
	"keypoints",
	"persons",
	"results.0.keypoints",
	"results.0.detections.#.keypoints",
	"detections.#.keypoints",
	"predictions.#.keypoints",
	"poses.#.keypoints",
}

// PoseEstimator runs a pose model behind an MCP tool
type PoseEstimator struct {
	client     MCPClient
	tool       string
	imageArg   string
	modelName  string
	confidence float64
}

// NewPoseEstimator creates an estimator calling the configured pose tool
func NewPoseEstimator(c MCPClient, config types.ServerConfig) *PoseEstimator {
	return &PoseEstimator{
		client:     c,
		tool:       config.Tool,
		imageArg:   config.ImageArg,
		modelName:  config.ModelName,
		confidence: config.Confidence,
	}
}

// Estimate returns the most prominent person's keypoints, or nil when no
// person was detected.
func (e *PoseEstimator) Estimate(ctx context.Context, imagePath string) (pose.Detection, error) {
	absPath, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	args := map[string]interface{}{
		e.imageArg: absPath,
	}
	if e.modelName != "" {
		args["model_name"] = e.modelName
	}
	if e.confidence > 0 {
		args["confidence"] = e.confidence
	}

	result, err := e.client.CallTool(ctx, e.tool, args)
	if err != nil {
		return nil, fmt.Errorf("%s failed for %s: %w", e.tool, imagePath, err)
	}

	return ParseFirstPerson(result.Text())
}

// ParseFirstPerson extracts the first person's keypoints from a pose tool
// response. Keypoints may be a list of persons, a single person as [x, y, c]
// rows or a flat list, or objects with x, y and confidence fields.
func ParseFirstPerson(text string) (pose.Detection, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("pose response is not JSON")
	}
	doc := gjson.Parse(text)

	for _, path := range keypointPaths {
		v := doc.Get(path)
		if !v.Exists() || !v.IsArray() {
			continue
		}
		return firstPerson(v)
	}
	return nil, nil
}

func firstPerson(v gjson.Result) (pose.Detection, error) {
	items := v.Array()
	if len(items) == 0 {
		return nil, nil
	}

	first := items[0]
	switch {
	case first.IsArray() && len(first.Array()) > 0 && first.Array()[0].IsArray():
		// list of persons, each a list of rows
		return decodeDetection(first.Raw)
	case first.IsArray() && len(first.Array()) > 0 && first.Array()[0].IsObject():
		return objectKeypoints(first.Array()), nil
	case first.IsArray() && len(first.Array()) == 0:
		return nil, nil
	case first.IsArray() && len(first.Array()) != 3:
		// list of persons, each a flat list
		return decodeDetection(first.Raw)
	case first.IsObject() && first.Get("keypoints").IsArray():
		return firstPerson(first.Get("keypoints"))
	case first.IsObject():
		return objectKeypoints(items), nil
	default:
		// rows or flat numbers of one person
		return decodeDetection(v.Raw)
	}
}

func decodeDetection(raw string) (pose.Detection, error) {
	var det pose.Detection
	if err := json.Unmarshal([]byte(raw), &det); err != nil {
		return nil, err
	}
	return det, nil
}

func objectKeypoints(items []gjson.Result) pose.Detection {
	det := make(pose.Detection, 0, len(items))
	for _, kp := range items {
		conf := kp.Get("confidence")
		if !conf.Exists() {
			conf = kp.Get("score")
		}
		if !conf.Exists() {
			conf = kp.Get("visibility")
		}
		det = append(det, pose.Keypoint{
			X:          float32(kp.Get("x").Float()),
			Y:          float32(kp.Get("y").Float()),
			Confidence: float32(conf.Float()),
		})
	}
	return det
}
