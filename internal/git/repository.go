package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JNZader/gitcritic/internal/logger"
)

// Repo implements Repository on top of a Runner.
type Repo struct {
	runner Runner
	remote string
	log    *logger.Logger
}

// NewRepo creates a Repo that resolves the default branch from remote.
func NewRepo(runner Runner, remote string) *Repo {
	if remote == "" {
		remote = "origin"
	}
	return &Repo{
		runner: runner,
		remote: remote,
		log:    logger.Default().WithPrefix("GIT"),
	}
}

func (r *Repo) VerifyWorkTree(ctx context.Context) error {
	out, err := r.runner.Run(ctx, cmdIsInsideWorkTree)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotAGitRepo, err)
	}
	if out != "true" {
		return fmt.Errorf("%w: %s printed %q", ErrNotAGitRepo, cmdIsInsideWorkTree, out)
	}
	return nil
}

// DefaultBranch returns the remote's HEAD branch. If the remote output has no
// "HEAD branch" line the result is empty rather than an error.
func (r *Repo) DefaultBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, fmt.Sprintf(cmdDefaultBranch, r.remote))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDefaultBranch, err)
	}
	if out == "" {
		r.log.Warn("remote %s reported no HEAD branch", r.remote)
	}
	return out, nil
}

func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, cmdCurrentBranch)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCurrentBranch, err)
	}
	return out, nil
}

func (r *Repo) Diff(ctx context.Context, defaultBranch, currentBranch string) (string, error) {
	out, err := r.runner.Run(ctx, DiffCommand(defaultBranch, currentBranch))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDiff, err)
	}
	return out, nil
}

// DiffCommand returns the diff invocation for the branch pair: the working
// tree diff when the names are equal, otherwise the three-dot diff of
// current against default.
func DiffCommand(defaultBranch, currentBranch string) string {
	defaultBranch = strings.TrimSpace(defaultBranch)
	currentBranch = strings.TrimSpace(currentBranch)
	if defaultBranch == currentBranch {
		return cmdWorkTreeDiff
	}
	return fmt.Sprintf(cmdBranchDiff, shellQuote(currentBranch), shellQuote(defaultBranch))
}

var plainRef = regexp.MustCompile(`^[A-Za-z0-9._/@+-]*$`)

// shellQuote leaves ordinary ref names untouched and single-quotes anything
// else. Ref names may legally contain characters such as ';' or '$'.
func shellQuote(s string) string {
	if plainRef.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
