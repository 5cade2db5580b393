package git

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JNZader/gitcritic/internal/metrics"
	"github.com/JNZader/gitcritic/internal/ui"
)

func TestShellRunnerTrimsOutput(t *testing.T) {
	r := NewShellRunner(RunnerOptions{StrictStderr: true})

	out, err := r.Run(context.Background(), "printf '  main\\n\\n'")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "main" {
		t.Errorf("Run() = %q, want %q", out, "main")
	}
}

func TestShellRunnerPipeline(t *testing.T) {
	r := NewShellRunner(RunnerOptions{StrictStderr: true})

	out, err := r.Run(context.Background(), "printf '  HEAD branch: develop\\n  Remote branches:\\n' | grep 'HEAD branch' | cut -d' ' -f5")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "develop" {
		t.Errorf("Run() = %q, want develop", out)
	}
}

func TestShellRunnerNonZeroExit(t *testing.T) {
	var out, errOut bytes.Buffer
	m := metrics.NewCollector()
	r := NewShellRunner(RunnerOptions{
		StrictStderr: true,
		Console:      ui.NewConsole(&out, &errOut, false),
		Metrics:      m,
	})

	_, err := r.Run(context.Background(), "echo partial; exit 3")
	if err == nil {
		t.Fatal("Run() expected error for exit 3")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error type = %T, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if !strings.Contains(errOut.String(), "Error running command: echo partial; exit 3") {
		t.Errorf("missing console diagnostic, got %q", errOut.String())
	}
	if got := m.Counter(metrics.MetricCommandFailures).Value(); got != 1 {
		t.Errorf("failure counter = %d, want 1", got)
	}
}

func TestShellRunnerStderrStrictness(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		wantErr bool
	}{
		{name: "strict fails on warning", strict: true, wantErr: true},
		{name: "lenient ignores warning", strict: false, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewShellRunner(RunnerOptions{StrictStderr: tt.strict})

			out, err := r.Run(context.Background(), "echo 'warning: LF will be replaced' >&2; echo ok")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cmdErr *CommandError
				if !errors.As(err, &cmdErr) {
					t.Fatalf("error type = %T, want *CommandError", err)
				}
				if cmdErr.ExitCode != 0 || cmdErr.Err != nil {
					t.Errorf("stderr-only failure should carry exit 0 and no cause, got %+v", cmdErr)
				}
				if !strings.Contains(cmdErr.Error(), "wrote to stderr") {
					t.Errorf("Error() = %q", cmdErr.Error())
				}
				return
			}
			if out != "ok" {
				t.Errorf("Run() = %q, want ok", out)
			}
		})
	}
}

func TestShellRunnerEmptyCommand(t *testing.T) {
	r := NewShellRunner(RunnerOptions{})

	if _, err := r.Run(context.Background(), "   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Run() error = %v, want ErrEmptyCommand", err)
	}
}

func TestShellRunnerHonorsContext(t *testing.T) {
	r := NewShellRunner(RunnerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, "echo never"); err == nil {
		t.Fatal("Run() expected error for cancelled context")
	}
}

func TestShellRunnerCountsCommands(t *testing.T) {
	m := metrics.NewCollector()
	r := NewShellRunner(RunnerOptions{Metrics: m})

	for i := 0; i < 3; i++ {
		if _, err := r.Run(context.Background(), "true"); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if got := m.Counter(metrics.MetricCommandsRun).Value(); got != 3 {
		t.Errorf("commands counter = %d, want 3", got)
	}
}
