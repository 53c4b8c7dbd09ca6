// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/delvehq/delve-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete delve configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Server (exploration backend) configuration
	Server ServerConfig `toml:"server" json:"server"`

	// Stream handling configuration
	Stream StreamConfig `toml:"stream" json:"stream"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig contains the exploration server endpoint settings.
type ServerConfig struct {
	// BaseURL is the URL of the exploration server
	BaseURL string `toml:"base_url" json:"base_url"`
	// QuestionPath is the streaming question endpoint path
	QuestionPath string `toml:"question_path" json:"question_path"`
	// TimeoutSecs is the timeout for non-streaming requests in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// StreamConfig contains answer stream handling settings.
type StreamConfig struct {
	// ProgressIntervalMS bounds how often the view is refreshed while an
	// answer streams, in milliseconds. Fragment text is never dropped by
	// the throttle, only coalesced.
	ProgressIntervalMS int `toml:"progress_interval_ms" json:"progress_interval_ms"`
	// ExtraInstructions is appended to every question sent to the server
	ExtraInstructions string `toml:"extra_instructions" json:"extra_instructions"`
}

// UIConfig contains user interface configuration.
type UIConfig struct {
	// Theme is the color theme: "dark", "light"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders completed answers as markdown when true
	Markdown bool `toml:"markdown" json:"markdown"`
	// ShowPathBar shows the conversation path bar above the input
	ShowPathBar bool `toml:"show_path_bar" json:"show_path_bar"`
	// PreviewWidth is the rune budget for prompt previews in the path bar
	PreviewWidth int `toml:"preview_width" json:"preview_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version:      "1.0",
		DefaultModel: "gpt-4o-mini",
		Server: ServerConfig{
			BaseURL:      "http://127.0.0.1:8000",
			QuestionPath: "/explore/question",
			TimeoutSecs:  30,
		},
		Stream: StreamConfig{
			ProgressIntervalMS: 100,
		},
		UI: UIConfig{
			Theme:        "dark",
			Markdown:     true,
			ShowPathBar:  true,
			PreviewWidth: 32,
		},
	}
}

// =============================================================================
// FILE PATHS
// =============================================================================

// ConfigDir returns the delve configuration directory (~/.delve).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".delve"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format is chosen by file extension, defaulting to TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. Decoding into a
// Default() base covers most fields; zero values a user may legitimately
// write (empty strings from a partial file) are re-filled here.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.QuestionPath == "" {
		c.Server.QuestionPath = defaults.Server.QuestionPath
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Stream.ProgressIntervalMS <= 0 {
		c.Stream.ProgressIntervalMS = defaults.Stream.ProgressIntervalMS
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.PreviewWidth <= 0 {
		c.UI.PreviewWidth = defaults.UI.PreviewWidth
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# delve configuration file\n")
	buf.WriteString("# Generated by delve - edit with care\n")
	buf.WriteString("\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ValidationError{Field: "server.base_url", Message: "must be an absolute http(s) URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ValidationError{Field: "server.base_url", Message: "scheme must be http or https"}
	}

	if !strings.HasPrefix(c.Server.QuestionPath, "/") {
		return ValidationError{Field: "server.question_path", Message: "must start with /"}
	}

	if c.Server.TimeoutSecs <= 0 {
		return ValidationError{Field: "server.timeout_secs", Message: "must be positive"}
	}

	// Below 10ms the throttle stops throttling; above 5s the UI feels dead.
	if c.Stream.ProgressIntervalMS < 10 || c.Stream.ProgressIntervalMS > 5000 {
		return ValidationError{Field: "stream.progress_interval_ms", Message: "must be between 10 and 5000"}
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be \"dark\" or \"light\""}
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DELVE_SERVER_URL: overrides server.base_url
//   - DELVE_MODEL: overrides default_model
//   - DELVE_EXTRA_INSTRUCTIONS: overrides stream.extra_instructions
//   - DELVE_PROGRESS_MS: overrides stream.progress_interval_ms
//   - DELVE_THEME: overrides ui.theme
//   - DELVE_MARKDOWN: set to "0" or "false" to disable markdown rendering
func (c *Config) ApplyEnvOverrides() {
	if serverURL := os.Getenv("DELVE_SERVER_URL"); serverURL != "" {
		c.Server.BaseURL = serverURL
	}

	if model := os.Getenv("DELVE_MODEL"); model != "" {
		c.DefaultModel = model
	}

	if extra := os.Getenv("DELVE_EXTRA_INSTRUCTIONS"); extra != "" {
		c.Stream.ExtraInstructions = extra
	}

	if ms := os.Getenv("DELVE_PROGRESS_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			c.Stream.ProgressIntervalMS = n
		}
	}

	if theme := os.Getenv("DELVE_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if markdown := os.Getenv("DELVE_MARKDOWN"); markdown != "" {
		c.UI.Markdown = markdown != "0" && strings.ToLower(markdown) != "false"
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
