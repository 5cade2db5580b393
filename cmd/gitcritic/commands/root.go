// Package commands wires the gitcritic pipeline behind a cobra command.
package commands

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JNZader/gitcritic/internal/config"
	"github.com/JNZader/gitcritic/internal/git"
	"github.com/JNZader/gitcritic/internal/logger"
	"github.com/JNZader/gitcritic/internal/metrics"
	"github.com/JNZader/gitcritic/internal/providers"
	"github.com/JNZader/gitcritic/internal/review"
	"github.com/JNZader/gitcritic/internal/ui"
)

const (
	// failureNotice is the last line printed when a run fails.
	failureNotice = "Failed to get code review for changes"

	// configPathEnv names an explicit config file, replacing the search.
	configPathEnv = "GITCRITIC_CONFIG"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitcritic",
	Short: "Critical AI code review of your branch",
	Long: `gitcritic diffs the current branch against the repository's default
branch and asks an OpenAI chat model for a critical review of the changes.

When the current branch is the default branch, uncommitted working tree
changes are reviewed instead.

Environment:
  OPENAI_API_KEY      API key for the review endpoint (also read from .env)
  GITCRITIC_CONFIG    config file to use instead of ./.gitcritic.yaml
  GITCRITIC_*         overrides for .gitcritic.yaml keys,
                      e.g. GITCRITIC_PROVIDER_MODEL=gpt-4o`,

	Args: cobra.NoArgs,

	// Failures are reported by the pipeline itself.
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: runReview,
}

// Execute runs the root command. It is called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func runReview(cmd *cobra.Command, _ []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	loader := config.NewLoader()
	if path := os.Getenv(configPathEnv); path != "" {
		loader.SetConfigFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		// output.color is unknown until the config loads.
		ui.NewConsole(stdout, stderr, false).Error(err, failureNotice)
		return err
	}

	console := ui.NewConsole(stdout, stderr, cfg.Output.Color)
	log := setupLogger(cfg, stderr)

	if path := loader.ConfigFileUsed(); path != "" {
		log.Debug("using config file %s", path)
	}
	if log.Enabled(logger.LevelDebug) {
		if dump, err := cfg.Redacted(); err == nil {
			log.Debug("effective configuration:\n%s", dump)
		}
	}

	// The key is checked when the review is requested, after the git stages.
	provider, err := providers.NewOpenAIProvider(cfg)
	if err != nil {
		console.Error(err, failureNotice)
		return err
	}

	collector := metrics.NewCollector()
	runner := git.NewShellRunner(git.RunnerOptions{
		Dir:          cfg.Git.RepoPath,
		StrictStderr: cfg.Git.StrictStderr,
		Console:      console,
		Metrics:      collector,
	})

	engine := review.NewEngine(git.NewRepo(runner, cfg.Git.Remote), provider, console, review.Options{
		ShowDiff: cfg.Output.ShowDiff,
		Metrics:  collector,
		Logger:   log.WithField("run_id", uuid.NewString()).WithPrefix("ENGINE"),
	})

	if _, err := engine.Run(cmd.Context()); err != nil {
		console.Error(nil, failureNotice)
		return err
	}
	return nil
}

// setupLogger points the process-wide logger at stderr with the configured
// level and teaches it the API key so the key never reaches a log line.
func setupLogger(cfg *config.Config, stderr io.Writer) *logger.Logger {
	log := logger.Default()
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	log.SetOutput(stderr)
	log.AddMaskFunc(logger.MaskLiteral(cfg.Provider.APIKey))
	return log
}
