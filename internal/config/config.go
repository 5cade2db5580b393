// Package config handles all configuration management for gitcritic.
//
// Configuration is loaded from multiple sources in order of precedence:
// 1. Environment variables (GITCRITIC_*, plus OPENAI_API_KEY for the key)
// 2. A .env file in the working directory
// 3. Configuration file (.gitcritic.yaml)
// 4. Default values (lowest priority)
//
// The loaded Config is passed down explicitly; no package reads the process
// environment after startup.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JNZader/gitcritic/internal/logger"
)

// Config is the main configuration structure for gitcritic.
type Config struct {
	// Provider configures the chat-completion endpoint
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`

	// Git configures how git is invoked
	Git GitConfig `mapstructure:"git" yaml:"git"`

	// Review configures the prompt sent with the diff
	Review ReviewConfig `mapstructure:"review" yaml:"review"`

	// Output configures console output
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Log configures diagnostic logging
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// ProviderConfig configures the chat-completion endpoint.
type ProviderConfig struct {
	// Model is the model identifier sent with every request
	Model string `mapstructure:"model" yaml:"model"`

	// BaseURL is the API base URL; /chat/completions is appended
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// APIKey is the bearer credential. Set it through OPENAI_API_KEY or
	// a .env file rather than the config file.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Timeout bounds the HTTP request. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// GitConfig configures git invocation.
type GitConfig struct {
	// RepoPath is the directory commands run in (default: current directory)
	RepoPath string `mapstructure:"repo_path" yaml:"repo_path"`

	// Remote is the remote whose HEAD branch is the default branch
	Remote string `mapstructure:"remote" yaml:"remote"`

	// StrictStderr fails a command that writes anything to stderr even
	// when it exits 0. git prints some benign warnings there, so turning
	// this off trades safety for fewer false failures.
	StrictStderr bool `mapstructure:"strict_stderr" yaml:"strict_stderr"`
}

// ReviewConfig configures the review prompt.
type ReviewConfig struct {
	// Instruction replaces the default critique instruction when set
	Instruction string `mapstructure:"instruction" yaml:"instruction"`

	// JSONSchema appends the structured-response instruction to the prompt
	JSONSchema bool `mapstructure:"json_schema" yaml:"json_schema"`
}

// OutputConfig configures console output.
type OutputConfig struct {
	// Color enables colored output
	Color bool `mapstructure:"color" yaml:"color"`

	// ShowDiff prints the diff before requesting the review
	ShowDiff bool `mapstructure:"show_diff" yaml:"show_diff"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
}

var remotePattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Provider.Model == "" {
		return &ValidationError{Field: "provider.model", Message: "model is required"}
	}

	u, err := url.Parse(c.Provider.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "provider.base_url", Message: "must be an absolute http(s) URL"}
	}

	if c.Provider.Timeout < 0 {
		return &ValidationError{Field: "provider.timeout", Message: "must not be negative"}
	}

	// The remote name is interpolated into a shell command.
	if !remotePattern.MatchString(c.Git.Remote) {
		return &ValidationError{Field: "git.remote", Message: "must be a plain remote name"}
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Message: err.Error()}
	}

	return nil
}

// Redacted renders the configuration as YAML with the API key masked, for
// debug logging.
func (c *Config) Redacted() (string, error) {
	cp := *c
	if cp.Provider.APIKey != "" {
		cp.Provider.APIKey = "***MASKED***"
	}
	out, err := yaml.Marshal(&cp)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config validation error: " + e.Field + ": " + e.Message
}
