// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Agent       AgentConfig       `mapstructure:"agent" yaml:"agent"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots" yaml:"screenshots"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	// File rotation (lumberjack). Rotation only applies when LogFile is set.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig controls the inbound HTTP surface.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// PublicBaseURL overrides the request-derived base address used to build
	// screenshot retrieval URLs. Needed when the service sits behind a proxy.
	PublicBaseURL string `mapstructure:"public_base_url" yaml:"public_base_url"`
	// MaxConcurrentSessions caps simultaneously running agent loops. Zero means
	// no cap.
	MaxConcurrentSessions int64 `mapstructure:"max_concurrent_sessions" yaml:"max_concurrent_sessions"`
	// RateLimitRPS limits inbound agent requests per second. Zero disables the
	// limiter.
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LLMConfig configures the completion service client.
type LLMConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
	// Endpoint overrides the provider's default generateContent URL. Used in
	// tests and for proxied deployments.
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint"`
	Temperature     float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	APITimeout      time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	// MaxRetryElapsed bounds the retry window for transient API failures.
	MaxRetryElapsed time.Duration `mapstructure:"max_retry_elapsed" yaml:"max_retry_elapsed"`
}

// BrowserConfig controls the shared browser process and per-action deadlines.
type BrowserConfig struct {
	Headless        bool     `mapstructure:"headless" yaml:"headless"`
	DisableGPU      bool     `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string `mapstructure:"args" yaml:"args"`
	// NavigationTimeout bounds Navigate/Back waits for initial content.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// ActionTimeout bounds element-level actions (click, fill, extract).
	ActionTimeout time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// AgentConfig controls the loop controller's explicit, overridable bounds.
// Both default to zero, preserving the unbounded loop behavior.
type AgentConfig struct {
	// MaxIterations terminates a loop with an error once this many dispatch
	// cycles have run. Zero means unbounded.
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`
	// MaxTranscriptBytes terminates a loop with an error once the rendered
	// transcript exceeds this size. Zero means unbounded.
	MaxTranscriptBytes int `mapstructure:"max_transcript_bytes" yaml:"max_transcript_bytes"`
}

// ScreenshotsConfig controls where captured screenshots are persisted.
type ScreenshotsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults registers every default value on the provided viper instance.
func SetDefaults(v *viper.Viper) {
	// Logger
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "render")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", true)

	// Server
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.public_base_url", "")
	v.SetDefault("server.max_concurrent_sessions", 8)
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.rate_limit_burst", 1)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// LLM
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_output_tokens", 1024)
	v.SetDefault("llm.api_timeout", 60*time.Second)
	v.SetDefault("llm.max_retry_elapsed", 2*time.Minute)

	// Browser
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.action_timeout", 10*time.Second)

	// Agent: zero keeps the loop unbounded.
	v.SetDefault("agent.max_iterations", 0)
	v.SetDefault("agent.max_transcript_bytes", 0)

	// Screenshots
	v.SetDefault("screenshots.dir", "screenshots")
}

// NewConfigFromViper unmarshals and validates the configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing runtime
// failures.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2], got %v", c.LLM.Temperature)
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("agent.max_iterations must not be negative")
	}
	if c.Agent.MaxTranscriptBytes < 0 {
		return fmt.Errorf("agent.max_transcript_bytes must not be negative")
	}
	if c.Screenshots.Dir == "" {
		return fmt.Errorf("screenshots.dir must not be empty")
	}
	return nil
}
