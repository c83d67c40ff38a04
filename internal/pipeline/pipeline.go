// Package pipeline runs classification and reasoning over the action roster.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhe.chen/pose-action-reasoner/internal/classifier"
	"github.com/zhe.chen/pose-action-reasoner/internal/pose"
	"github.com/zhe.chen/pose-action-reasoner/internal/reasoning"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// Classifier reduces a clip's frame vectors to one label
type Classifier interface {
	ClassifyClip(vectors [][]float32) (classifier.Prediction, error)
}

// Reasoner produces normalized reasoning for labels
type Reasoner interface {
	ReasonAction(ctx context.Context, label string) (reasoning.ActionReasoning, error)
	ReasonSequence(ctx context.Context, labels []string) (reasoning.TemporalReasoning, error)
}

// StageError names the action and stage a run stopped at
type StageError struct {
	Action string // Empty for the temporal stage
	Stage  types.PipelineStage
	Err    error
}

func (e *StageError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("action %s: stage %s failed: %v", e.Action, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options configures a Pipeline
type Options struct {
	Roster     []string
	Dim        int
	ReportPath string // Empty disables persistence
	Provider   string // Recorded in the report
	Model      string
}

// Pipeline orchestrates the execution of all stages
type Pipeline struct {
	store      pose.Store
	classifier Classifier
	reasoner   Reasoner
	roster     []string
	dim        int
	reportPath string
	provider   string
	model      string
	logger     zerolog.Logger
}

// NewPipeline creates a new pipeline executor
func NewPipeline(store pose.Store, cls Classifier, reasoner Reasoner, opts Options, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		classifier: cls,
		reasoner:   reasoner,
		roster:     append([]string(nil), opts.Roster...),
		dim:        opts.Dim,
		reportPath: opts.ReportPath,
		provider:   opts.Provider,
		model:      opts.Model,
		logger:     logger,
	}
}

// Run processes the roster in declared order, then reasons over the
// recognized sequence. Actions without pose data are skipped. A failing
// classifier or reasoning call stops the run with a *StageError; the report
// so far is still returned and persisted.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := NewReport(uuid.NewString(), p.roster)
	report.Provider = p.provider
	report.Model = p.model

	p.logger.Info().
		Str("run_id", report.RunID).
		Strs("roster", p.roster).
		Msg("Starting pipeline run")

	report.Unlisted = p.unlistedActions(ctx)

	for _, action := range p.roster {
		if err := ctx.Err(); err != nil {
			return report, p.fail(report, err)
		}

		res := report.AddAction(action)
		if err := p.runAction(ctx, report, res); err != nil {
			return report, p.fail(report, err)
		}
		p.save(report)
	}

	if err := p.runTemporal(ctx, report); err != nil {
		return report, p.fail(report, err)
	}

	report.CurrentStage = types.StageComplete
	if err := p.persist(report); err != nil {
		return report, err
	}

	counts := report.Counts()
	p.logger.Info().
		Str("run_id", report.RunID).
		Int("completed", counts[types.StatusCompleted]).
		Int("skipped", counts[types.StatusSkipped]).
		Msg("Pipeline completed")
	return report, nil
}

func (p *Pipeline) runAction(ctx context.Context, report *Report, res *ActionResult) error {
	logger := p.logger.With().Str("action", res.Action).Logger()
	run := &actionRun{result: res}

	for _, stage := range GetActionStages() {
		step, err := GetStepForStage(stage)
		if err != nil {
			return err
		}

		report.CurrentStage = stage
		res.StartStage(stage)
		logger.Debug().Str("stage", string(stage)).Msg("Starting stage")

		err = step(ctx, p, run)
		if errors.Is(err, errMissingData) {
			res.Skip(stage, err.Error())
			logger.Warn().Err(err).Msg("Skipping action due to missing or invalid data")
			return nil
		}
		if err != nil {
			res.FailStage(stage, err)
			return &StageError{Action: res.Action, Stage: stage, Err: err}
		}
		res.CompleteStage(stage)

		if stage == types.StageClassify {
			report.History = append(report.History, run.prediction.Label)
			logger.Info().
				Str("label", run.prediction.Label).
				Interface("counts", run.prediction.Counts).
				Msg("Majority prediction")
		}
	}

	res.Status = types.StatusCompleted
	return nil
}

func (p *Pipeline) runTemporal(ctx context.Context, report *Report) error {
	report.CurrentStage = types.StageTemporal

	if len(report.History) == 0 {
		report.Temporal.Status = types.StatusSkipped
		report.Temporal.Error = "no recognized actions"
		p.logger.Warn().Msg("No actions recognized, skipping temporal reasoning")
		return nil
	}

	report.Temporal.start()
	seq, err := p.reasoner.ReasonSequence(ctx, report.History)
	if err != nil {
		report.Temporal.fail(err)
		return &StageError{Stage: types.StageTemporal, Err: err}
	}
	report.Temporal.complete()
	report.Sequence = &seq
	return nil
}

// unlistedActions returns store actions the roster never visits. A store that
// cannot list its actions is not an error; the roster drives the run.
func (p *Pipeline) unlistedActions(ctx context.Context) []string {
	stored, err := p.store.Actions(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Could not list pose store actions")
		return nil
	}

	inRoster := make(map[string]bool, len(p.roster))
	for _, label := range p.roster {
		inRoster[label] = true
	}

	var unlisted []string
	for _, action := range stored {
		if !inRoster[action] {
			unlisted = append(unlisted, action)
		}
	}
	sort.Strings(unlisted)
	if len(unlisted) > 0 {
		p.logger.Warn().Strs("actions", unlisted).Msg("Pose store has actions outside the roster; they are ignored")
	}
	return unlisted
}

// fail persists the partial report and returns err unchanged
func (p *Pipeline) fail(report *Report, err error) error {
	p.logger.Error().Err(err).Str("run_id", report.RunID).Msg("Pipeline stopped")
	p.save(report)
	return err
}

func (p *Pipeline) persist(report *Report) error {
	if p.reportPath == "" {
		return nil
	}
	if err := report.Save(p.reportPath); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// save persists progress, logging instead of failing
func (p *Pipeline) save(report *Report) {
	if err := p.persist(report); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to save report")
	}
}
