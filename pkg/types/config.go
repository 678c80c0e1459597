package types

import "time"

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOllama    Provider = "ollama"
)

// AIConfig holds settings for the text-generation backend.
type AIConfig struct {
	// Provider selects the backend (default "groq").
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "llama-3.1-8b-instant").
	// Empty selects the provider default.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider. An empty key
	// disables generation for providers that require one.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint. Required for deepseek,
	// used as the host URL for ollama.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of additional attempts after a failed
	// generation call (default 2). Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds a single generation request (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Strategy selects how a full pipeline run is orchestrated.
type Strategy string

const (
	// StrategySequential runs the four stages one by one.
	StrategySequential Strategy = "sequential"

	// StrategyCrew runs the named-role chain first and fills any missing
	// output from the sequential stages.
	StrategyCrew Strategy = "crew"
)

// PipelineConfig holds settings for the pitch pipeline.
type PipelineConfig struct {
	// Strategy selects the orchestration strategy (default sequential).
	Strategy Strategy `json:"strategy" yaml:"strategy"`
}

// RenderConfig holds settings for document export.
type RenderConfig struct {
	// Subtitle is printed under the title when set.
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`

	// OutputDir is where exported documents are written by the CLI.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the session run store.
type StoreConfig struct {
	// Path is the SQLite database path. The default ":memory:" keeps runs
	// only for the lifetime of the process.
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all settings.
type Config struct {
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}
