package types

import "time"

// Config represents the application configuration
type Config struct {
	Roster     []string       `yaml:"roster"` // Must match the label order the artifact was trained with
	Features   FeaturesConfig `yaml:"features"`
	Pose       PoseConfig     `yaml:"pose"`
	Model      ModelConfig    `yaml:"model"`
	LLM        LLMConfig      `yaml:"llm"`
	Report     ReportConfig   `yaml:"report"`
	PoseServer ServerConfig   `yaml:"pose_server"`
}

// FeaturesConfig controls keypoint encoding
type FeaturesConfig struct {
	Dim int `yaml:"dim"`
}

// PoseConfig selects where per-frame detections are read from
type PoseConfig struct {
	Backend    string `yaml:"backend"` // "dir" or "sqlite"
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ModelConfig points at the exported scaler + classifier artifact
type ModelConfig struct {
	ArtifactPath string `yaml:"artifact_path"`
}

// ReportConfig controls where run reports are persisted
type ReportConfig struct {
	Path string `yaml:"path"` // Empty disables persistence
}

// LLMConfig defines reasoning transport configuration
type LLMConfig struct {
	Provider    string        `yaml:"provider"` // "openai", "openrouter", "anthropic", "google"
	Model       string        `yaml:"model"`    // Overrides the provider default when set
	Temperature *float32      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	// Provider-specific configurations
	OpenAI     OpenAIConfig     `yaml:"openai"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Google     GoogleConfig     `yaml:"google"`
}

// OpenAIConfig for GPT models
type OpenAIConfig struct {
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`        // e.g., "gpt-4o-mini"
	Organization string        `yaml:"organization"` // Optional
	BaseURL      string        `yaml:"base_url"`     // Optional, for compatible gateways
	Timeout      time.Duration `yaml:"timeout"`
}

// OpenRouterConfig for models routed through OpenRouter
type OpenRouterConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"` // e.g., "openai/gpt-4o-mini"
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig for Claude
type AnthropicConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"` // e.g., "claude-3-5-haiku-latest"
	BaseURL   string        `yaml:"base_url"`
	MaxTokens int64         `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// GoogleConfig for Gemini
type GoogleConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"` // e.g., "gemini-2.0-flash"
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig defines the MCP pose server used by pose extraction
type ServerConfig struct {
	Name       string            `yaml:"name"`
	Command    []string          `yaml:"command"`   // For stdio transport
	URL        string            `yaml:"url"`       // For HTTP transport
	Transport  string            `yaml:"transport"` // "stdio" or "http"
	Timeout    time.Duration     `yaml:"timeout"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	Tool       string            `yaml:"tool"`       // Pose tool name
	ImageArg   string            `yaml:"image_arg"`  // Argument carrying the frame path
	ModelName  string            `yaml:"model_name"` // Passed as model_name when set
	Confidence float64           `yaml:"confidence"`
}

// PipelineStage represents a stage of one action's processing
type PipelineStage string

const (
	StageLoadPoses PipelineStage = "load_poses"
	StageClassify  PipelineStage = "classify"
	StageReason    PipelineStage = "reason"
	StageTemporal  PipelineStage = "temporal_reason"
	StageComplete  PipelineStage = "complete"
)

// StageStatus represents the execution status of a stage
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)
