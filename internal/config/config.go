package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhe.chen/pose-action-reasoner/pkg/types"
)

type contextKey string

const configKey contextKey = "config"

const (
	DefaultDim         = 51
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = float32(0.3)
)

// DefaultRoster is the action label order used at training time
var DefaultRoster = []string{"open_door", "pick_book", "pour_water", "walk_stop"}

// Load reads the YAML configuration file, expanding environment variables.
// An empty path yields the defaults.
func Load(path string) (*types.Config, error) {
	cfg := &types.Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every unset field
func ApplyDefaults(cfg *types.Config) {
	if len(cfg.Roster) == 0 {
		cfg.Roster = append([]string(nil), DefaultRoster...)
	}
	if cfg.Features.Dim == 0 {
		cfg.Features.Dim = DefaultDim
	}
	if cfg.Pose.Backend == "" {
		cfg.Pose.Backend = "dir"
	}
	if cfg.Pose.Dir == "" {
		cfg.Pose.Dir = "new_pose_keypoints"
	}
	if cfg.Pose.SQLitePath == "" {
		cfg.Pose.SQLitePath = "poses.db"
	}
	if cfg.Model.ArtifactPath == "" {
		cfg.Model.ArtifactPath = "mlp_action_model.json"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	// Other providers fall back to their own default model
	if cfg.LLM.Model == "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.Temperature == nil {
		t := DefaultTemperature
		cfg.LLM.Temperature = &t
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	for _, t := range []*time.Duration{
		&cfg.LLM.OpenAI.Timeout,
		&cfg.LLM.OpenRouter.Timeout,
		&cfg.LLM.Anthropic.Timeout,
		&cfg.LLM.Google.Timeout,
	} {
		if *t == 0 {
			*t = cfg.LLM.Timeout
		}
	}
	if cfg.PoseServer.Transport == "" {
		cfg.PoseServer.Transport = "stdio"
	}
	if cfg.PoseServer.Tool == "" {
		cfg.PoseServer.Tool = "analyze_image_from_path"
	}
	if cfg.PoseServer.ImageArg == "" {
		cfg.PoseServer.ImageArg = "image_path"
	}
	if cfg.PoseServer.Timeout == 0 {
		cfg.PoseServer.Timeout = 30 * time.Second
	}
}

// Validate rejects configurations the pipeline cannot run with
func Validate(cfg *types.Config) error {
	if len(cfg.Roster) == 0 {
		return fmt.Errorf("roster must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Roster))
	for _, label := range cfg.Roster {
		if label == "" {
			return fmt.Errorf("roster contains an empty label")
		}
		if seen[label] {
			return fmt.Errorf("roster contains duplicate label %q", label)
		}
		seen[label] = true
	}
	if cfg.Features.Dim <= 0 {
		return fmt.Errorf("features.dim must be positive, got %d", cfg.Features.Dim)
	}
	switch cfg.Pose.Backend {
	case "dir", "sqlite":
	default:
		return fmt.Errorf("unsupported pose backend: %s (supported: dir, sqlite)", cfg.Pose.Backend)
	}
	return nil
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *types.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *types.Config {
	if cfg, ok := ctx.Value(configKey).(*types.Config); ok {
		return cfg
	}
	cfg := &types.Config{}
	ApplyDefaults(cfg)
	return cfg
}
