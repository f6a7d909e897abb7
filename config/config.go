// Package config provides configuration loading and management for VendorIQ.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete VendorIQ configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Workflow WorkflowConfig `yaml:"workflow"`
	RFP      RFPConfig      `yaml:"rfp"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// LLMConfig configures the model endpoint used for RFP template generation.
// API keys are not stored here; providers read ANTHROPIC_API_KEY or
// OPENAI_API_KEY from the environment.
type LLMConfig struct {
	// Provider selects a registered provider ("anthropic" or "ollama")
	Provider string `yaml:"provider"`
	// Endpoint is the provider base URL (empty = provider default)
	Endpoint string `yaml:"endpoint"`
	// Model is the model identifier sent to the provider
	Model string `yaml:"model"`
	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for one completion
	Timeout time.Duration `yaml:"timeout"`
}

// WorkflowConfig configures the wizard pacing delays.
type WorkflowConfig struct {
	// DiscoverDelay paces the vendor discovery pass
	DiscoverDelay time.Duration `yaml:"discover_delay"`
	// ScoreDelay paces each vendor during the scoring pass
	ScoreDelay time.Duration `yaml:"score_delay"`
}

// RFPConfig configures document generation.
type RFPConfig struct {
	// TemplatesDir overlays the embedded templates (empty = embedded only)
	TemplatesDir string `yaml:"templates_dir"`
	// OutputDir receives generated .docx documents
	OutputDir string `yaml:"output_dir"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	// Addr is the listen address for the JSON API
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "anthropic",
			Endpoint:    "",
			Model:       "claude-sonnet-4-5",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Workflow: WorkflowConfig{
			DiscoverDelay: 1500 * time.Millisecond,
			ScoreDelay:    600 * time.Millisecond,
		},
		RFP: RFPConfig{
			TemplatesDir: "",
			OutputDir:    "generated",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "anthropic", "ollama":
	case "":
		return fmt.Errorf("llm.provider is required")
	default:
		return fmt.Errorf("llm.provider must be anthropic or ollama, got %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be between 0 and 1")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.RFP.OutputDir == "" {
		return fmt.Errorf("rfp.output_dir is required")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.LLM.Provider != "" {
		c.LLM.Provider = other.LLM.Provider
	}
	if other.LLM.Endpoint != "" {
		c.LLM.Endpoint = other.LLM.Endpoint
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.Temperature != 0 {
		c.LLM.Temperature = other.LLM.Temperature
	}
	if other.LLM.Timeout != 0 {
		c.LLM.Timeout = other.LLM.Timeout
	}

	if other.Workflow.DiscoverDelay != 0 {
		c.Workflow.DiscoverDelay = other.Workflow.DiscoverDelay
	}
	if other.Workflow.ScoreDelay != 0 {
		c.Workflow.ScoreDelay = other.Workflow.ScoreDelay
	}

	if other.RFP.TemplatesDir != "" {
		c.RFP.TemplatesDir = other.RFP.TemplatesDir
	}
	if other.RFP.OutputDir != "" {
		c.RFP.OutputDir = other.RFP.OutputDir
	}

	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}
}
