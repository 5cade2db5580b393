// Package review sequences the git queries and the review request.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/JNZader/gitcritic/internal/git"
	"github.com/JNZader/gitcritic/internal/logger"
	"github.com/JNZader/gitcritic/internal/metrics"
	"github.com/JNZader/gitcritic/internal/providers"
	"github.com/JNZader/gitcritic/internal/ui"
)

// Stage identifies where the pipeline is.
type Stage string

const (
	StageInit            Stage = "init"
	StageVerifyRepo      Stage = "verify_repo"
	StageResolveBranches Stage = "resolve_branches"
	StageComputeDiff     Stage = "compute_diff"
	StageRequestReview   Stage = "request_review"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Options tunes what the engine prints and how it is observed.
type Options struct {
	// ShowDiff prints the diff before the review is requested.
	ShowDiff bool

	// Metrics receives counters and stage timings; nil allocates one.
	Metrics *metrics.Collector

	// Logger overrides the default ENGINE logger.
	Logger *logger.Logger
}

// Engine runs one review from repository check to printed result. Every
// step completes before the next starts and each external call is made at
// most once.
type Engine struct {
	repo     git.Repository
	provider providers.Provider
	console  *ui.Console
	metrics  *metrics.Collector
	log      *logger.Logger
	showDiff bool
	stage    Stage
}

// NewEngine creates a new review engine.
func NewEngine(repo git.Repository, provider providers.Provider, console *ui.Console, opts Options) *Engine {
	if console == nil {
		console = ui.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewCollector()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default().WithPrefix("ENGINE")
	}
	return &Engine{
		repo:     repo,
		provider: provider,
		console:  console,
		metrics:  m,
		log:      log,
		showDiff: opts.ShowDiff,
		stage:    StageInit,
	}
}

// Result describes a completed run.
type Result struct {
	DefaultBranch string        `json:"default_branch"`
	CurrentBranch string        `json:"current_branch"`
	Stats         git.DiffStats `json:"stats"`
	Review        string        `json:"review,omitempty"`
	Skipped       bool          `json:"skipped"`
	Duration      time.Duration `json:"duration"`
}

// Stage returns the stage the engine is in, or stopped in.
func (e *Engine) Stage() Stage {
	return e.stage
}

// Run executes the pipeline. An empty diff ends the run successfully
// without contacting the provider.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		e.log.Debug("finished in %s at stage %s: %s",
			time.Since(start).Round(time.Millisecond), e.stage, e.metrics.Summary())
	}()

	res := &Result{}

	if err := e.verifyRepo(ctx); err != nil {
		return nil, err
	}

	if err := e.resolveBranches(ctx, res); err != nil {
		return nil, err
	}

	diff, err := e.computeDiff(ctx, res)
	if err != nil {
		return nil, err
	}

	if diff == "" {
		e.console.Success("No changes to review between %s and %s.", res.CurrentBranch, res.DefaultBranch)
		res.Skipped = true
		e.stage = StageDone
		res.Duration = time.Since(start)
		return res, nil
	}

	if err := e.requestReview(ctx, diff, res); err != nil {
		return nil, err
	}

	e.console.Result(res.Review)
	e.stage = StageDone
	res.Duration = time.Since(start)
	return res, nil
}

func (e *Engine) verifyRepo(ctx context.Context) error {
	defer e.enter(StageVerifyRepo).Stop()

	if err := e.repo.VerifyWorkTree(ctx); err != nil {
		return e.fail(err, "Not inside a git work tree")
	}
	return nil
}

// resolveBranches resolves default then current branch; either failure is
// fatal.
func (e *Engine) resolveBranches(ctx context.Context, res *Result) error {
	defer e.enter(StageResolveBranches).Stop()

	def, err := e.repo.DefaultBranch(ctx)
	if err != nil {
		return e.fail(err, "Failed to get default branch")
	}

	cur, err := e.repo.CurrentBranch(ctx)
	if err != nil {
		return e.fail(err, "Failed to get current branch")
	}

	res.DefaultBranch, res.CurrentBranch = def, cur
	e.log.WithFields(map[string]interface{}{"default": def, "current": cur}).Debug("branches resolved")
	return nil
}

func (e *Engine) computeDiff(ctx context.Context, res *Result) (string, error) {
	defer e.enter(StageComputeDiff).Stop()

	e.log.Debug("diff command: %s", git.DiffCommand(res.DefaultBranch, res.CurrentBranch))

	diff, err := e.repo.Diff(ctx, res.DefaultBranch, res.CurrentBranch)
	if err != nil {
		return "", e.fail(err, "Failed to get diff")
	}

	e.metrics.Counter(metrics.MetricDiffBytes).Add(int64(len(diff)))
	res.Stats = git.ParseStats(diff)
	return diff, nil
}

func (e *Engine) requestReview(ctx context.Context, diff string, res *Result) error {
	defer e.enter(StageRequestReview).Stop()

	if e.showDiff {
		e.console.Block(diff)
	}
	e.console.Info("%s", res.Stats)
	e.console.Success("Getting code review...")

	e.metrics.Counter(metrics.MetricProviderRequests).Inc()
	review, err := e.provider.Review(ctx, diff)
	if err != nil {
		e.metrics.Counter(metrics.MetricProviderErrors).Inc()
		return e.fail(err, "Failed to get code review")
	}

	res.Review = review
	return nil
}

func (e *Engine) enter(stage Stage) *metrics.TimerContext {
	e.stage = stage
	e.log.Debug("entering %s", stage)
	return e.metrics.StartTimer(metrics.MetricStageDuration + "_" + string(stage))
}

// fail reports a stage failure and returns err unchanged. Command failures
// were already printed by the runner, so only the stage line is added.
func (e *Engine) fail(err error, msg string) error {
	failedAt := e.stage
	e.stage = StageFailed

	var cmdErr *git.CommandError
	if errors.As(err, &cmdErr) {
		e.console.Error(nil, msg)
	} else {
		e.console.Error(err, msg)
	}
	fields := map[string]interface{}{"stage": failedAt, "error": err}
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		fields["body"] = apiErr.Body
	}
	e.log.WithFields(fields).Debug(msg)
	return err
}
