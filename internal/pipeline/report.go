package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zhe.chen/pose-action-reasoner/internal/classifier"
	"github.com/zhe.chen/pose-action-reasoner/internal/reasoning"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

// Report is the persisted record of one pipeline run
type Report struct {
	// Metadata
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Roster    []string  `json:"roster"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`

	// Actions present in the pose store but absent from the roster
	Unlisted []string `json:"unlisted_actions,omitempty"`

	// Current execution state
	CurrentStage types.PipelineStage `json:"current_stage"`
	Actions      []*ActionResult     `json:"actions"`

	// Temporal pass over the recognized labels
	History  []string                     `json:"history"`
	Temporal *StageState                  `json:"temporal_stage"`
	Sequence *reasoning.TemporalReasoning `json:"temporal,omitempty"`
}

// ActionResult tracks one roster entry through the stages
type ActionResult struct {
	Action     string                              `json:"action"`
	Status     types.StageStatus                   `json:"status"`
	Stages     map[types.PipelineStage]*StageState `json:"stages"`
	Frames     int                                 `json:"frames"`
	Prediction *classifier.Prediction              `json:"prediction,omitempty"`
	Reasoning  *reasoning.ActionReasoning          `json:"reasoning,omitempty"`
}

// StageState tracks the state of a single stage
type StageState struct {
	Status      types.StageStatus `json:"status"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// NewReport creates an empty report for roster
func NewReport(runID string, roster []string) *Report {
	now := time.Now()
	return &Report{
		RunID:        runID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Roster:       append([]string(nil), roster...),
		CurrentStage: types.StageLoadPoses,
		Actions:      make([]*ActionResult, 0, len(roster)),
		History:      []string{},
		Temporal:     &StageState{Status: types.StatusPending},
	}
}

// LoadReport reads a report from file
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// Save writes report to file atomically
func (r *Report) Save(path string) error {
	r.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	// Write to temp file first for atomicity
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}

// AddAction appends a pending entry for action
func (r *Report) AddAction(action string) *ActionResult {
	res := &ActionResult{
		Action: action,
		Status: types.StatusPending,
		Stages: make(map[types.PipelineStage]*StageState),
	}
	r.Actions = append(r.Actions, res)
	return res
}

// Reasonings returns the reasoning objects of completed actions in roster order
func (r *Report) Reasonings() []reasoning.ActionReasoning {
	var out []reasoning.ActionReasoning
	for _, a := range r.Actions {
		if a.Status == types.StatusCompleted && a.Reasoning != nil {
			out = append(out, *a.Reasoning)
		}
	}
	return out
}

// Counts returns how many actions ended in each status
func (r *Report) Counts() map[types.StageStatus]int {
	counts := make(map[types.StageStatus]int)
	for _, a := range r.Actions {
		counts[a.Status]++
	}
	return counts
}

// Stage returns the state for a stage, creating if needed
func (a *ActionResult) Stage(stage types.PipelineStage) *StageState {
	if a.Stages[stage] == nil {
		a.Stages[stage] = &StageState{Status: types.StatusPending}
	}
	return a.Stages[stage]
}

// StartStage marks a stage as running
func (a *ActionResult) StartStage(stage types.PipelineStage) {
	a.Stage(stage).start()
	a.Status = types.StatusRunning
}

// CompleteStage marks a stage as completed
func (a *ActionResult) CompleteStage(stage types.PipelineStage) {
	a.Stage(stage).complete()
}

// FailStage marks a stage and the action as failed
func (a *ActionResult) FailStage(stage types.PipelineStage, err error) {
	a.Stage(stage).fail(err)
	a.Status = types.StatusFailed
}

// Skip marks the action as skipped at stage with a reason
func (a *ActionResult) Skip(stage types.PipelineStage, reason string) {
	state := a.Stage(stage)
	state.Status = types.StatusSkipped
	state.Error = reason
	a.Status = types.StatusSkipped
}

func (s *StageState) start() {
	now := time.Now()
	s.Status = types.StatusRunning
	s.StartedAt = &now
}

func (s *StageState) complete() {
	now := time.Now()
	s.Status = types.StatusCompleted
	s.CompletedAt = &now
}

func (s *StageState) fail(err error) {
	now := time.Now()
	s.Status = types.StatusFailed
	s.CompletedAt = &now
	s.Error = err.Error()
}
