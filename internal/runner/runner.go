// Package runner executes external diagnostic commands for rigcheck.
//
// It is the only place where rigcheck spawns processes. Every call is bounded
// by its own timeout and never fails loudly: a missing binary, a non-zero
// exit or a timeout all come back as an Output with OK set to false.
//
//	r := runner.NewExec(runner.WithTimeout(5 * time.Second))
//	if out, ok := r.Run(ctx, "nvcc --version").Value(); ok {
//	    // parse out
//	}
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single command invocation.
const DefaultTimeout = 10 * time.Second

// exitCommandNotFound is the status sh uses when the binary does not exist.
const exitCommandNotFound = 127

// FailureReason explains why a command produced no usable output.
type FailureReason int

const (
	// ReasonNone means the command succeeded.
	ReasonNone FailureReason = iota
	// ReasonMissing means the binary could not be found or started.
	ReasonMissing
	// ReasonExit means the command exited with a non-zero status.
	ReasonExit
	// ReasonTimeout means the command did not finish in time.
	ReasonTimeout
	// ReasonEmpty means the command succeeded but printed nothing.
	ReasonEmpty
)

// String returns the string representation of a FailureReason.
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMissing:
		return "missing"
	case ReasonExit:
		return "exit"
	case ReasonTimeout:
		return "timeout"
	case ReasonEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Output is the outcome of a single command.
// Stdout is trimmed and is always empty when OK is false.
type Output struct {
	Stdout string
	OK     bool
	Reason FailureReason
}

// Value returns the trimmed stdout and whether it is usable.
func (o Output) Value() (string, bool) {
	return o.Stdout, o.OK
}

// Success builds a successful Output.
func Success(stdout string) Output {
	stdout = strings.TrimSpace(stdout)
	if stdout == "" {
		return Failure(ReasonEmpty)
	}
	return Output{Stdout: stdout, OK: true}
}

// Failure builds a failed Output.
func Failure(reason FailureReason) Output {
	return Output{Reason: reason}
}

// Runner executes shell command strings.
type Runner interface {
	// Run executes command and returns its trimmed stdout.
	// Implementations must not panic and must not block past their timeout.
	Run(ctx context.Context, command string) Output
}

// Exec runs commands through the system shell.
type Exec struct {
	shell   string
	timeout time.Duration
	logger  *slog.Logger

	// For testing: override command construction
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Option configures an Exec runner.
type Option func(*Exec)

// WithTimeout sets the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Exec) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger for failed invocations.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exec) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExec creates a shell runner with the given options.
func NewExec(opts ...Option) *Exec {
	e := &Exec{
		shell:       "sh",
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, command string) Output {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := e.execCommand(ctx, e.shell, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = nil
	// Do not wait on orphaned grandchildren holding the pipe open.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	out := classify(ctx, stdout.String(), err)

	if !out.OK {
		e.logger.Debug("command produced no output",
			slog.String("command", command),
			slog.String("reason", out.Reason.String()),
			slog.Duration("duration", time.Since(start)))
	}
	return out
}

// classify maps the result of cmd.Run onto an Output.
func classify(ctx context.Context, stdout string, err error) Output {
	if err == nil {
		return Success(stdout)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Failure(ReasonTimeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == exitCommandNotFound {
			return Failure(ReasonMissing)
		}
		return Failure(ReasonExit)
	}
	return Failure(ReasonMissing)
}

// Ensure Exec implements Runner
var _ Runner = (*Exec)(nil)
