package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhe.chen/pose-action-reasoner/internal/config"
	"github.com/zhe.chen/pose-action-reasoner/internal/pipeline"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Print a saved run report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		path := cfg.Report.Path
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no report path given and report.path is not set")
		}

		report, err := pipeline.LoadReport(path)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		counts := report.Counts()
		fmt.Fprintf(w, "Run %s (%s/%s) stage=%s completed=%d skipped=%d failed=%d\n",
			report.RunID, report.Provider, report.Model, report.CurrentStage,
			counts[types.StatusCompleted], counts[types.StatusSkipped], counts[types.StatusFailed])
		return printReport(w, report)
	},
}
