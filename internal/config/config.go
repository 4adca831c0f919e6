// Package config provides configuration loading for advisord.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/advisord/internal/logging"
)

// Config is the root advisord configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  logging.Config `koanf:"logging"`
	History  HistoryConfig  `koanf:"history"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	LLM      LLMConfig      `koanf:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HistoryConfig selects and configures the history store backend.
type HistoryConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `koanf:"backend"`

	// Path is the sqlite database file. Ignored for the memory backend.
	Path string `koanf:"path"`

	// WindowLimit bounds how many past content items one analysis reads.
	WindowLimit int `koanf:"window_limit"`
}

// PipelineConfig tunes the analysis pipeline.
type PipelineConfig struct {
	// ParallelTimeout bounds the whole observe fan-out.
	ParallelTimeout time.Duration `koanf:"parallel_timeout"`

	// StepTimeout bounds a single capability attempt inside a chain.
	StepTimeout time.Duration `koanf:"step_timeout"`

	// Retries is the number of attempts per chain step.
	Retries int `koanf:"retries"`

	// MemoryCapacity bounds the per-user short-term memory buffer.
	MemoryCapacity int `koanf:"memory_capacity"`
}

// LLMConfig configures the optional narrative model.
type LLMConfig struct {
	Enabled           bool    `koanf:"enabled"`
	Model             string  `koanf:"model"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.History.Backend != "memory" && c.History.Backend != "sqlite" {
		return fmt.Errorf("history.backend must be memory or sqlite, got %q", c.History.Backend)
	}
	if c.History.Backend == "sqlite" && c.History.Path == "" {
		return fmt.Errorf("history.path is required for the sqlite backend")
	}
	if c.History.WindowLimit < 1 {
		return fmt.Errorf("history.window_limit must be positive")
	}
	if c.Pipeline.Retries < 1 {
		return fmt.Errorf("pipeline.retries must be at least 1")
	}
	if c.Pipeline.MemoryCapacity < 1 {
		return fmt.Errorf("pipeline.memory_capacity must be positive")
	}
	if c.LLM.Enabled && c.LLM.RequestsPerSecond <= 0 {
		return fmt.Errorf("llm.requests_per_second must be positive when llm is enabled")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
