package main

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhe.chen/pose-action-reasoner/internal/client"
	"github.com/zhe.chen/pose-action-reasoner/internal/config"
	"github.com/zhe.chen/pose-action-reasoner/internal/pose"
)

var (
	importFrom   string
	importTo     string
	extractInput string
)

var posesCmd = &cobra.Command{
	Use:   "poses",
	Short: "Manage per-frame pose keypoints",
}

var posesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a keypoint directory tree into a SQLite pose store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		from := cfg.Pose.Dir
		if importFrom != "" {
			from = importFrom
		}
		to := cfg.Pose.SQLitePath
		if importTo != "" {
			to = importTo
		}

		dst, err := pose.OpenSQLiteStore(to)
		if err != nil {
			return err
		}
		defer dst.Close()

		src := pose.NewDirStore(from)
		log.Info().Str("from", src.Root()).Str("to", to).Msg("Importing poses")

		bar := pb.StartNew(len(cfg.Roster))
		stats, err := pose.Copy(cmd.Context(), src, dst, cfg.Roster, func(action string, frames int) {
			log.Debug().Str("action", action).Int("frames", frames).Msg("Imported action")
			bar.Increment()
		})
		bar.Finish()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d frames for %d actions into %s (%d missing)\n",
			stats.Frames, stats.Actions, to, len(stats.Missing))
		return nil
	},
}

var posesExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Estimate keypoints for extracted video frames through the MCP pose server",
	Example: `  actionreason poses extract --frames extracted_frames`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		ctx := cmd.Context()

		total, err := countFrames(extractInput)
		if err != nil {
			return err
		}

		poseClient, err := client.Connect(ctx, cfg.PoseServer, cfg.PoseServer.Tool)
		if err != nil {
			return err
		}
		defer poseClient.Close()

		name, version := poseClient.GetServerInfo()
		log.Info().Str("server", name).Str("version", version).Msg("Connected to pose server")

		store, err := openPoseStore(cfg.Pose)
		if err != nil {
			return err
		}
		defer store.Close()

		bar := pb.StartNew(total)
		stats, err := client.ExtractPoses(ctx, client.NewPoseEstimator(poseClient, cfg.PoseServer), extractInput, store, func(string) {
			bar.Increment()
		})
		bar.Finish()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d frames for %d actions (%d without a person)\n",
			stats.Frames, stats.Actions, stats.NoPerson)
		return nil
	},
}

func init() {
	posesImportCmd.Flags().StringVar(&importFrom, "from", "", "keypoint directory (defaults to pose.dir)")
	posesImportCmd.Flags().StringVar(&importTo, "to", "", "SQLite database (defaults to pose.sqlite_path)")

	posesExtractCmd.Flags().StringVar(&extractInput, "frames", "extracted_frames", "directory of per-action frame folders")

	posesCmd.AddCommand(posesImportCmd)
	posesCmd.AddCommand(posesExtractCmd)
}

func countFrames(framesDir string) (int, error) {
	dirs, err := client.FrameDirs(framesDir)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, dir := range dirs {
		files, err := client.FrameFiles(dir)
		if err != nil {
			return 0, err
		}
		total += len(files)
	}
	return total, nil
}
