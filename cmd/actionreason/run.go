package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhe.chen/pose-action-reasoner/internal/classifier"
	"github.com/zhe.chen/pose-action-reasoner/internal/config"
	"github.com/zhe.chen/pose-action-reasoner/internal/logging"
	"github.com/zhe.chen/pose-action-reasoner/internal/pipeline"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

var (
	runArtifact string
	runReport   string
	runModel    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify every roster action and reason about the recognized sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if runArtifact != "" {
			cfg.Model.ArtifactPath = runArtifact
		}
		if runReport != "" {
			cfg.Report.Path = runReport
		}

		artifact, err := classifier.LoadArtifact(cfg.Model.ArtifactPath)
		if err != nil {
			return err
		}
		if err := artifact.VerifyRoster(cfg.Roster); err != nil {
			return err
		}
		if artifact.Dim != cfg.Features.Dim {
			return fmt.Errorf("artifact expects %d features, config has features.dim=%d", artifact.Dim, cfg.Features.Dim)
		}
		mlp, err := artifact.NewModel()
		if err != nil {
			return err
		}
		aggregator := classifier.NewAggregator(artifact.NewScaler(), mlp, cfg.Roster)

		store, err := openPoseStore(cfg.Pose)
		if err != nil {
			return err
		}
		defer store.Close()

		agent, err := newAgent(cfg, runModel)
		if err != nil {
			return err
		}

		llmModel := cfg.LLM.Model
		if runModel != "" {
			llmModel = runModel
		}

		p := pipeline.NewPipeline(store, aggregator, agent, pipeline.Options{
			Roster:     cfg.Roster,
			Dim:        cfg.Features.Dim,
			ReportPath: cfg.Report.Path,
			Provider:   cfg.LLM.Provider,
			Model:      llmModel,
		}, logging.WithComponent("pipeline"))

		report, runErr := p.Run(cmd.Context())
		if report != nil {
			if err := printReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		}
		if runErr != nil {
			var stageErr *pipeline.StageError
			if errors.As(runErr, &stageErr) {
				log.Error().
					Str("action", stageErr.Action).
					Str("stage", string(stageErr.Stage)).
					Msg("Run stopped")
			}
			return runErr
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runArtifact, "artifact", "", "classifier artifact path (overrides model.artifact_path)")
	runCmd.Flags().StringVar(&runReport, "report", "", "run report path (overrides report.path)")
	runCmd.Flags().StringVar(&runModel, "model", "", "model override")
}

func printReport(w io.Writer, report *pipeline.Report) error {
	for _, res := range report.Actions {
		fmt.Fprintf(w, "=== %s ===\n", res.Action)
		if res.Status == types.StatusSkipped {
			fmt.Fprintln(w, "skipped: no pose data")
			continue
		}
		if res.Prediction != nil {
			fmt.Fprintf(w, "Predicted: %s (%d frames) counts: %s\n",
				res.Prediction.Label, res.Prediction.Frames, formatCounts(res.Prediction.Counts))
		}
		if res.Reasoning != nil {
			if err := printJSON(w, res.Reasoning); err != nil {
				return err
			}
		}
	}

	if len(report.Unlisted) > 0 {
		fmt.Fprintf(w, "Ignored (not in roster): %s\n", strings.Join(report.Unlisted, ", "))
	}

	if report.Sequence != nil {
		fmt.Fprintln(w, "=== temporal ===")
		if err := printJSON(w, report.Sequence); err != nil {
			return err
		}
	}
	return nil
}

func formatCounts(counts map[string]int) string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = fmt.Sprintf("%s=%d", label, counts[label])
	}
	return strings.Join(parts, " ")
}
