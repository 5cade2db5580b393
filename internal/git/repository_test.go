package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner returns canned output per command and records every call.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, command string) (string, error) {
	f.calls = append(f.calls, command)
	if err, ok := f.errs[command]; ok {
		return "", err
	}
	return f.outputs[command], nil
}

func TestDiffCommand(t *testing.T) {
	tests := []struct {
		name          string
		defaultBranch string
		currentBranch string
		want          string
	}{
		{"same branch", "main", "main", "git diff"},
		{"same after trim", "main\n", " main", "git diff"},
		{"feature branch", "main", "feature/login", "git diff feature/login...main"},
		{"detached head against HEAD", "HEAD", "HEAD", "git diff"},
		{"detached head against main", "main", "HEAD", "git diff HEAD...main"},
		{"ref needing quotes", "main", "fix;echo", "git diff 'fix;echo'...main"},
		{"ref with quote", "main", "it's", `git diff 'it'\''s'...main`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiffCommand(tt.defaultBranch, tt.currentBranch); got != tt.want {
				t.Errorf("DiffCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerifyWorkTree(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		err     error
		wantErr bool
	}{
		{name: "inside work tree", output: "true"},
		{name: "inside git dir", output: "false", wantErr: true},
		{name: "command failure", err: &CommandError{Command: cmdIsInsideWorkTree, ExitCode: 128}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{
				outputs: map[string]string{cmdIsInsideWorkTree: tt.output},
				errs:    map[string]error{},
			}
			if tt.err != nil {
				runner.errs[cmdIsInsideWorkTree] = tt.err
			}

			err := NewRepo(runner, "origin").VerifyWorkTree(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyWorkTree() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNotAGitRepo) {
				t.Errorf("error %v does not wrap ErrNotAGitRepo", err)
			}
		})
	}
}

func TestDefaultBranchCommand(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"git remote show upstream | grep 'HEAD branch' | cut -d' ' -f5": "trunk",
	}}

	got, err := NewRepo(runner, "upstream").DefaultBranch(context.Background())
	if err != nil {
		t.Fatalf("DefaultBranch() error = %v", err)
	}
	if got != "trunk" {
		t.Errorf("DefaultBranch() = %q, want trunk", got)
	}
}

func TestDefaultBranchMissingLineIsEmpty(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{}}

	got, err := NewRepo(runner, "").DefaultBranch(context.Background())
	if err != nil {
		t.Fatalf("DefaultBranch() error = %v", err)
	}
	if got != "" {
		t.Errorf("DefaultBranch() = %q, want empty", got)
	}
	if runner.calls[0] != "git remote show origin | grep 'HEAD branch' | cut -d' ' -f5" {
		t.Errorf("unexpected command %q", runner.calls[0])
	}
}

func TestStageErrorsWrapCommandError(t *testing.T) {
	cause := &CommandError{Command: "x", ExitCode: 1}
	runner := &fakeRunner{errs: map[string]error{
		"git remote show origin | grep 'HEAD branch' | cut -d' ' -f5": cause,
		cmdCurrentBranch:          cause,
		"git diff feature...main": cause,
	}}
	repo := NewRepo(runner, "origin")
	ctx := context.Background()

	_, err := repo.DefaultBranch(ctx)
	assertStageError(t, err, ErrDefaultBranch, cause)

	_, err = repo.CurrentBranch(ctx)
	assertStageError(t, err, ErrCurrentBranch, cause)

	_, err = repo.Diff(ctx, "main", "feature")
	assertStageError(t, err, ErrDiff, cause)
}

func assertStageError(t *testing.T, err, stage error, cause *CommandError) {
	t.Helper()
	if !errors.Is(err, stage) {
		t.Errorf("error %v does not wrap %v", err, stage)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr != cause {
		t.Errorf("error %v does not carry the CommandError", err)
	}
}

func TestDiffEmptyIsNotError(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"git diff": ""}}

	out, err := NewRepo(runner, "origin").Diff(context.Background(), "main", "main")
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if out != "" {
		t.Errorf("Diff() = %q, want empty", out)
	}
}

// gitEnv isolates git from the developer's configuration.
func gitEnv(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("git %s unavailable here: %v: %s", strings.Join(args, " "), err, out)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRepoAgainstRealGit(t *testing.T) {
	gitEnv(t)

	origin := t.TempDir()
	work := t.TempDir()
	gitCmd(t, origin, "init", "--bare", "-b", "main")
	gitCmd(t, work, "init", "-b", "main")
	writeFile(t, filepath.Join(work, "app.go"), "package app\n")
	gitCmd(t, work, "add", "app.go")
	gitCmd(t, work, "commit", "-m", "initial")
	gitCmd(t, work, "remote", "add", "origin", origin)
	gitCmd(t, work, "push", "-u", "origin", "main")

	repo := NewRepo(NewShellRunner(RunnerOptions{Dir: work, StrictStderr: true}), "origin")
	ctx := context.Background()

	if err := repo.VerifyWorkTree(ctx); err != nil {
		t.Fatalf("VerifyWorkTree() error = %v", err)
	}

	def, err := repo.DefaultBranch(ctx)
	if err != nil {
		t.Fatalf("DefaultBranch() error = %v", err)
	}
	cur, err := repo.CurrentBranch(ctx)
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if def != "main" || cur != "main" {
		t.Fatalf("branches = %q/%q, want main/main", def, cur)
	}

	diff, err := repo.Diff(ctx, def, cur)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if diff != "" {
		t.Errorf("clean tree should produce no diff, got %q", diff)
	}

	writeFile(t, filepath.Join(work, "app.go"), "package app\n\nvar x = 1\n")
	diff, err = repo.Diff(ctx, def, cur)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if !strings.Contains(diff, "+var x = 1") {
		t.Errorf("working tree diff missing change:\n%s", diff)
	}

	stats := ParseStats(diff)
	if stats.FilesChanged != 1 || stats.Additions != 2 || stats.Deletions != 0 {
		t.Errorf("ParseStats() = %+v", stats)
	}
}

func TestRepoThreeDotDiffAgainstRealGit(t *testing.T) {
	gitEnv(t)

	work := t.TempDir()
	gitCmd(t, work, "init", "-b", "main")
	writeFile(t, filepath.Join(work, "a.txt"), "base\n")
	gitCmd(t, work, "add", ".")
	gitCmd(t, work, "commit", "-m", "base")
	gitCmd(t, work, "branch", "feature")

	// main moves on after feature branched off
	writeFile(t, filepath.Join(work, "a.txt"), "base\nmain-only\n")
	gitCmd(t, work, "commit", "-am", "main change")
	gitCmd(t, work, "checkout", "-q", "feature")

	repo := NewRepo(NewShellRunner(RunnerOptions{Dir: work, StrictStderr: true}), "origin")
	diff, err := repo.Diff(context.Background(), "main", "feature")
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	// feature...main: what main gained since the merge base.
	if !strings.Contains(diff, "+main-only") {
		t.Errorf("three-dot diff missing main change:\n%s", diff)
	}
}

func TestVerifyWorkTreeOutsideRepo(t *testing.T) {
	gitEnv(t)

	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	repo := NewRepo(NewShellRunner(RunnerOptions{Dir: dir, StrictStderr: true}), "origin")
	err := repo.VerifyWorkTree(context.Background())
	if !errors.Is(err, ErrNotAGitRepo) {
		t.Fatalf("VerifyWorkTree() error = %v, want ErrNotAGitRepo", err)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.ExitCode == 0 {
		t.Errorf("expected non-zero CommandError, got %v", err)
	}
}
