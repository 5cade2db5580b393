package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/JNZader/gitcritic/internal/logger"
	"github.com/JNZader/gitcritic/internal/metrics"
	"github.com/JNZader/gitcritic/internal/ui"
)

// CommandError describes a failed command: a non-zero exit, a failure to
// start, or (in strict mode) output on stderr.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case e.Err != nil && e.Stderr != "":
		return fmt.Sprintf("command %q: %v: %s", e.Command, e.Err, e.Stderr)
	case e.Err != nil:
		return fmt.Sprintf("command %q: %v", e.Command, e.Err)
	default:
		return fmt.Sprintf("command %q wrote to stderr: %s", e.Command, e.Stderr)
	}
}

func (e *CommandError) Unwrap() error { return e.Err }

// ShellRunner implements Runner with `sh -c`.
type ShellRunner struct {
	dir     string
	shell   string
	strict  bool
	console *ui.Console
	metrics *metrics.Collector
	log     *logger.Logger
}

// RunnerOptions configures a ShellRunner.
type RunnerOptions struct {
	// Dir is the working directory; empty means the current directory.
	Dir string

	// StrictStderr treats any stderr output as a failure even on exit 0.
	StrictStderr bool

	// Console receives the red failure line; nil disables it.
	Console *ui.Console

	// Metrics counts commands and failures; nil disables counting.
	Metrics *metrics.Collector
}

// NewShellRunner creates a ShellRunner.
func NewShellRunner(opts RunnerOptions) *ShellRunner {
	return &ShellRunner{
		dir:     opts.Dir,
		shell:   "sh",
		strict:  opts.StrictStderr,
		console: opts.Console,
		metrics: opts.Metrics,
		log:     logger.Default().WithPrefix("GIT"),
	}
}

// Run executes command and returns its stdout with surrounding whitespace
// trimmed. No timeout is applied beyond what ctx carries.
func (r *ShellRunner) Run(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", ErrEmptyCommand
	}

	r.count(metrics.MetricCommandsRun)
	r.log.Debug("running %s", command)

	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	errText := strings.TrimSpace(stderr.String())

	if runErr != nil {
		cmdErr := &CommandError{Command: command, ExitCode: -1, Stderr: errText, Err: runErr}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return "", r.fail(cmdErr, "Error running command: %s", command)
	}

	if r.strict && errText != "" {
		cmdErr := &CommandError{Command: command, Stderr: errText}
		return "", r.fail(cmdErr, "Command resulted in stderr: %s", command)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *ShellRunner) fail(err *CommandError, format string, args ...interface{}) error {
	r.count(metrics.MetricCommandFailures)
	r.log.WithField("exit_code", err.ExitCode).Debug("%v", err)
	if r.console != nil {
		r.console.Error(err, format, args...)
	}
	return err
}

func (r *ShellRunner) count(name string) {
	if r.metrics != nil {
		r.metrics.Counter(name).Inc()
	}
}
