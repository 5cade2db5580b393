package config

import "time"

// Default endpoint settings.
const (
	DefaultModel   = "gpt-3.5-turbo"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultRemote  = "origin"
)

// DefaultConfig returns a Config with the out-of-the-box values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Model:   DefaultModel,
			BaseURL: DefaultBaseURL,
			Timeout: time.Duration(0),
		},
		Git: GitConfig{
			RepoPath:     ".",
			Remote:       DefaultRemote,
			StrictStderr: true,
		},
		Review: ReviewConfig{
			JSONSchema: true,
		},
		Output: OutputConfig{
			Color:    true,
			ShowDiff: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
