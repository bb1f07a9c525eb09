// Package config loads and persists stencil settings from
// .stencil/stencil.yml, with STENCIL_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all tunable settings.
type Config struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"api_key,omitempty"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	SandboxEnabled bool    `yaml:"sandbox_enabled"`
	LogLevel       string  `yaml:"log_level"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Provider:       "openai",
		Model:          "gpt-4o",
		MaxTokens:      4000,
		Temperature:    0.1,
		SandboxEnabled: true,
		LogLevel:       "info",
	}
}

var (
	validProviders = map[string]bool{"openai": true, "static": true, "mock": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks enumerated fields and numeric ranges.
func (c Config) Validate() error {
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q (expected openai, static, or mock)", c.Provider)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn, or error)", c.LogLevel)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// Manager reads and writes the config file for one project.
type Manager struct {
	dir string // directory holding stencil.yml
}

// NewManager returns a manager storing config under projectDir/.stencil.
func NewManager(projectDir string) *Manager {
	return &Manager{dir: filepath.Join(projectDir, ".stencil")}
}

// Path returns the config file location.
func (m *Manager) Path() string {
	return filepath.Join(m.dir, "stencil.yml")
}

// Load reads the config file, applying defaults for missing values and
// environment overrides (STENCIL_API_KEY and friends). A missing file
// yields defaults; a corrupted file yields defaults and is rewritten.
func (m *Manager) Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("stencil")
	v.SetConfigType("yaml")
	v.AddConfigPath(m.dir)
	v.SetEnvPrefix("STENCIL")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("provider", def.Provider)
	v.SetDefault("model", def.Model)
	v.SetDefault("api_key", "")
	v.SetDefault("max_tokens", def.MaxTokens)
	v.SetDefault("temperature", def.Temperature)
	v.SetDefault("sandbox_enabled", def.SandboxEnabled)
	v.SetDefault("log_level", def.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Corrupted file: fall back to defaults and rewrite it.
			if saveErr := m.Save(def); saveErr != nil {
				return def, fmt.Errorf("config file unreadable and rewrite failed: %w", saveErr)
			}
		}
	}

	cfg := Config{
		Provider:       v.GetString("provider"),
		Model:          v.GetString("model"),
		APIKey:         v.GetString("api_key"),
		MaxTokens:      v.GetInt("max_tokens"),
		Temperature:    v.GetFloat64("temperature"),
		SandboxEnabled: v.GetBool("sandbox_enabled"),
		LogLevel:       v.GetString("log_level"),
	}
	if err := cfg.Validate(); err != nil {
		return def, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func (m *Manager) Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("config: create %s: %w", m.dir, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(m.Path(), data, 0o644)
}

// Keys lists the settable config keys in display order.
func Keys() []string {
	return []string{"provider", "model", "api_key", "max_tokens", "temperature", "sandbox_enabled", "log_level"}
}

// Get returns the string form of one config value.
func (m *Manager) Get(key string) (string, error) {
	cfg, err := m.Load()
	if err != nil {
		return "", err
	}
	switch key {
	case "provider":
		return cfg.Provider, nil
	case "model":
		return cfg.Model, nil
	case "api_key":
		if cfg.APIKey == "" {
			return "", nil
		}
		return maskKey(cfg.APIKey), nil
	case "max_tokens":
		return fmt.Sprintf("%d", cfg.MaxTokens), nil
	case "temperature":
		return fmt.Sprintf("%g", cfg.Temperature), nil
	case "sandbox_enabled":
		return fmt.Sprintf("%t", cfg.SandboxEnabled), nil
	case "log_level":
		return cfg.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
}

// Set updates one config value and persists the file.
func (m *Manager) Set(key, value string) error {
	cfg, err := m.Load()
	if err != nil {
		return err
	}
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "api_key":
		cfg.APIKey = value
	case "max_tokens":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("max_tokens: %q is not an integer", value)
		}
		cfg.MaxTokens = n
	case "temperature":
		var f float64
		if _, err := fmt.Sscanf(value, "%g", &f); err != nil {
			return fmt.Errorf("temperature: %q is not a number", value)
		}
		cfg.Temperature = f
	case "sandbox_enabled":
		switch value {
		case "true":
			cfg.SandboxEnabled = true
		case "false":
			cfg.SandboxEnabled = false
		default:
			return fmt.Errorf("sandbox_enabled: %q is not true or false", value)
		}
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return m.Save(cfg)
}

func maskKey(k string) string {
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}
	return k[:4] + strings.Repeat("*", len(k)-8) + k[len(k)-4:]
}
