// Package executil runs external programs behind an interface so callers can
// swap in a recorder under test.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external programs.
type Executor interface {
	// Output runs a program and returns its stdout. Stderr is folded into the
	// error when the program fails.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Shell runs a command line through sh -c and returns its stdout.
	Shell(ctx context.Context, line string) ([]byte, error)
	// LookPath resolves a program on PATH.
	LookPath(name string) (string, error)
}

// RealExecutor calls actual programs.
type RealExecutor struct{}

func (e *RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, name, args...)
	c.Stderr = &stderr

	out, err := c.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("exec %s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("exec %s: %w", name, err)
	}
	return out, nil
}

func (e *RealExecutor) Shell(ctx context.Context, line string) ([]byte, error) {
	return e.Output(ctx, "sh", "-c", line)
}

func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
