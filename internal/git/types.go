// Package git runs the git commands gitcritic needs: the work-tree check,
// default and current branch resolution, and the diff itself.
//
// Commands are executed as shell strings so the pipelines are reproduced
// exactly as written below. Every call is synchronous from the caller's
// point of view.
package git

import (
	"context"
	"errors"
)

// Command templates.
const (
	cmdIsInsideWorkTree = "git rev-parse --is-inside-work-tree"
	cmdDefaultBranch    = "git remote show %s | grep 'HEAD branch' | cut -d' ' -f5"
	cmdCurrentBranch    = "git rev-parse --abbrev-ref HEAD"
	cmdWorkTreeDiff     = "git diff"
	cmdBranchDiff       = "git diff %s...%s"
)

// Stage errors. They wrap the underlying *CommandError, so callers can use
// errors.Is for the stage and errors.As for the process details.
var (
	ErrNotAGitRepo   = errors.New("not a git repository")
	ErrDefaultBranch = errors.New("failed to get default branch")
	ErrCurrentBranch = errors.New("failed to get current branch")
	ErrDiff          = errors.New("failed to get diff")
	ErrEmptyCommand  = errors.New("empty command")
)

// Runner executes a shell command and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// Repository defines the git queries the review pipeline depends on.
// This abstraction allows for testing with mock implementations.
type Repository interface {
	// VerifyWorkTree fails with ErrNotAGitRepo unless the working
	// directory is inside a git work tree.
	VerifyWorkTree(ctx context.Context) error

	// DefaultBranch returns the branch the remote advertises as HEAD.
	DefaultBranch(ctx context.Context) (string, error)

	// CurrentBranch returns the checked-out branch name ("HEAD" when
	// detached).
	CurrentBranch(ctx context.Context) (string, error)

	// Diff returns the diff between the two branches, or the working tree
	// diff when they are equal. An empty string means no changes.
	Diff(ctx context.Context, defaultBranch, currentBranch string) (string, error)
}

// DiffStats contains summary statistics about a diff.
type DiffStats struct {
	FilesChanged int `json:"files_changed"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}
