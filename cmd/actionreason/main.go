package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhe.chen/pose-action-reasoner/internal/config"
	"github.com/zhe.chen/pose-action-reasoner/internal/logging"
)

const defaultConfigPath = "configs/actionreason.yaml"

var (
	cfgFile string
	verbose bool
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn().Msg("Received interrupt signal, shutting down")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "actionreason",
	Short:         "Recognize human actions from pose keypoints and reason about them",
	Long:          "Classifies action clips from 2D pose keypoints with a trained MLP and asks an LLM for structured per-action and temporal reasoning.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		// Load .env file (ignore error if file doesn't exist)
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("No .env file found, using environment variables")
		}

		path := cfgFile
		if !cmd.Flags().Changed("config") {
			if _, err := os.Stat(path); err != nil {
				path = ""
			}
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reasonCmd)
	rootCmd.AddCommand(posesCmd)
	rootCmd.AddCommand(artifactCmd)
	rootCmd.AddCommand(reportCmd)
}
