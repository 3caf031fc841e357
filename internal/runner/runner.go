package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Executor runs external command surfaces.
type Executor interface {
	// Output runs a command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Attach runs a command connected to the operator's terminal (login flows).
	Attach(ctx context.Context, name string, args ...string) error
}

// CommandError is returned when an external command exits unsuccessfully
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Stderr, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner executes commands on the local system.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func NewRunner(stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}
}

func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	line := CommandLine(name, args...)
	r.Logger.Debug("running command", "command", line)

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return "", &CommandError{Command: line, Stderr: msg, Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) Attach(ctx context.Context, name string, args ...string) error {
	line := CommandLine(name, args...)
	r.Logger.Debug("running interactive command", "command", line)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{Command: line, Err: err}
	}
	return nil
}

// CommandLine renders a command for logs and error messages
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
