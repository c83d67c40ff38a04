package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhe.chen/pose-action-reasoner/internal/classifier"
	"github.com/zhe.chen/pose-action-reasoner/internal/features"
	"github.com/zhe.chen/pose-action-reasoner/internal/pose"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// errMissingData marks an action that has no usable frames. It is recovered
// by skipping the action.
var errMissingData = errors.New("missing pose data")

// actionRun carries one action's intermediate results between steps
type actionRun struct {
	result     *ActionResult
	frames     []pose.Frame
	prediction classifier.Prediction
}

// StepFunc represents a per-action pipeline step
type StepFunc func(ctx context.Context, p *Pipeline, run *actionRun) error

// ExecuteLoadPoses reads the action's frames from the pose store
func ExecuteLoadPoses(ctx context.Context, p *Pipeline, run *actionRun) error {
	frames, err := p.store.LoadFrames(ctx, run.result.Action)
	if errors.Is(err, pose.ErrActionNotFound) {
		return fmt.Errorf("%w: %v", errMissingData, err)
	}
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames for %s", errMissingData, run.result.Action)
	}

	run.frames = frames
	run.result.Frames = len(frames)
	return nil
}

// ExecuteClassify encodes every frame and takes the clip-level majority vote
func ExecuteClassify(ctx context.Context, p *Pipeline, run *actionRun) error {
	vectors := features.EncodeClip(run.frames, p.dim)

	pred, err := p.classifier.ClassifyClip(vectors)
	if err != nil {
		return err
	}
	if pred.Label == "" {
		return fmt.Errorf("%w: no frame predictions for %s", errMissingData, run.result.Action)
	}

	run.prediction = pred
	run.result.Prediction = &pred
	return nil
}

// ExecuteReason asks the reasoner about the predicted label
func ExecuteReason(ctx context.Context, p *Pipeline, run *actionRun) error {
	r, err := p.reasoner.ReasonAction(ctx, run.prediction.Label)
	if err != nil {
		return err
	}
	run.result.Reasoning = &r
	return nil
}

// GetActionStages returns the ordered per-action stages
func GetActionStages() []types.PipelineStage {
	return []types.PipelineStage{
		types.StageLoadPoses,
		types.StageClassify,
		types.StageReason,
	}
}

// GetStepForStage returns the step function for a given stage
func GetStepForStage(stage types.PipelineStage) (StepFunc, error) {
	switch stage {
	case types.StageLoadPoses:
		return ExecuteLoadPoses, nil
	case types.StageClassify:
		return ExecuteClassify, nil
	case types.StageReason:
		return ExecuteReason, nil
	default:
		return nil, fmt.Errorf("unknown stage: %s", stage)
	}
}
