package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhe.chen/pose-action-reasoner/internal/classifier"
	"github.com/zhe.chen/pose-action-reasoner/internal/config"
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Inspect classifier artifacts",
}

var artifactInspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print an artifact's roster, fingerprint and layer shapes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		path := cfg.Model.ArtifactPath
		if len(args) == 1 {
			path = args[0]
		}

		artifact, err := classifier.LoadArtifact(path)
		if err != nil {
			return err
		}

		mlp, err := artifact.NewModel()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Artifact:    %s\n", path)
		fmt.Fprintf(w, "Roster:      %v\n", artifact.Roster)
		fmt.Fprintf(w, "Fingerprint: %s\n", artifact.RosterFingerprint)
		fmt.Fprintf(w, "Dim:         %d\n", artifact.Dim)
		fmt.Fprintf(w, "Classes:     %d\n", mlp.Classes())
		fmt.Fprintf(w, "Activation:  %s\n", artifact.Classifier.Activation)
		for i, layer := range artifact.Classifier.Layers {
			out := 0
			if len(layer.Weights) > 0 {
				out = len(layer.Weights[0])
			}
			fmt.Fprintf(w, "Layer %d:     %dx%d\n", i, len(layer.Weights), out)
		}

		if err := artifact.VerifyRoster(cfg.Roster); err != nil {
			fmt.Fprintf(w, "Config roster: MISMATCH (%v)\n", err)
		} else {
			fmt.Fprintln(w, "Config roster: ok")
		}
		return nil
	},
}

func init() {
	artifactCmd.AddCommand(artifactInspectCmd)
}
