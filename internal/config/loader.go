package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config file constants (SonarQube S1192)
const (
	configName = ".gitcritic"
	envPrefix  = "GITCRITIC"
	dotEnvFile = ".env"

	// APIKeyEnv is the conventional variable holding the OpenAI credential.
	APIKeyEnv = "OPENAI_API_KEY"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	// GITCRITIC_PROVIDER_MODEL -> provider.model
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// SetConfigFile sets a specific config file to use.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// Load loads the configuration from all sources.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	l.setDefaults(cfg)

	// Explicit names take precedence over AutomaticEnv for the key.
	if err := l.v.BindEnv("provider.api_key", envPrefix+"_PROVIDER_API_KEY", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("binding %s: %w", APIKeyEnv, err)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from the dotenv file once.
// Variables already set in the environment are left alone.
func (l *Loader) loadDotEnv() error {
	if err := godotenv.Load(dotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}
	return nil
}

func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("provider.model", cfg.Provider.Model)
	l.v.SetDefault("provider.base_url", cfg.Provider.BaseURL)
	l.v.SetDefault("provider.timeout", cfg.Provider.Timeout)

	l.v.SetDefault("git.repo_path", cfg.Git.RepoPath)
	l.v.SetDefault("git.remote", cfg.Git.Remote)
	l.v.SetDefault("git.strict_stderr", cfg.Git.StrictStderr)

	l.v.SetDefault("review.instruction", cfg.Review.Instruction)
	l.v.SetDefault("review.json_schema", cfg.Review.JSONSchema)

	l.v.SetDefault("output.color", cfg.Output.Color)
	l.v.SetDefault("output.show_diff", cfg.Output.ShowDiff)

	l.v.SetDefault("log.level", cfg.Log.Level)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
