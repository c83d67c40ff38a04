package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhe.chen/pose-action-reasoner/internal/config"
	"github.com/zhe.chen/pose-action-reasoner/internal/logging"
	"github.com/zhe.chen/pose-action-reasoner/internal/reasoning"
	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

var (
	reasonAction   string
	reasonSequence string
	reasonModel    string
)

var reasonCmd = &cobra.Command{
	Use:   "reason",
	Short: "Run LLM reasoning for one action label or an action sequence",
	Example: `  actionreason reason --action open_door
  actionreason reason --sequence open_door,walk_stop,pick_book`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		seq := parseSequence(reasonSequence)
		if reasonSequence == "" && reasonAction == "" {
			return fmt.Errorf("one of --action or --sequence is required (labels: %s)", strings.Join(cfg.Roster, ", "))
		}

		agent, err := newAgent(cfg, reasonModel)
		if err != nil {
			return err
		}

		if reasonSequence != "" {
			result, err := agent.ReasonSequence(cmd.Context(), seq)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}

		result, err := agent.ReasonAction(cmd.Context(), reasonAction)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	reasonCmd.Flags().StringVar(&reasonAction, "action", "", "action label, e.g. open_door")
	reasonCmd.Flags().StringVar(&reasonSequence, "sequence", "", "comma separated action sequence")
	reasonCmd.Flags().StringVar(&reasonModel, "model", "", "model override")
}

// newAgent wires the configured provider into a reasoning agent
func newAgent(cfg *types.Config, modelOverride string) (*reasoning.Agent, error) {
	provider, err := enabledProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	model := cfg.LLM.Model
	if modelOverride != "" {
		model = modelOverride
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", model).
		Msg("Reasoning provider ready")

	return reasoning.NewAgent(provider, reasoning.Options{
		Model:       model,
		Temperature: *cfg.LLM.Temperature,
	}, logging.WithComponent("reasoning")), nil
}

// parseSequence splits on commas and drops blank entries
func parseSequence(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
