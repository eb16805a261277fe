package executil

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps program names to their stdout. Shell commands are keyed
	// by "sh".
	Outputs map[string][]byte

	// Errors maps program names to their error.
	Errors map[string]error

	// Paths lists the programs LookPath can find.
	Paths map[string]string
}

func (e *RecordingExecutor) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: name, Args: args})
	return e.Outputs[name], e.Errors[name]
}

func (e *RecordingExecutor) Shell(ctx context.Context, line string) ([]byte, error) {
	return e.Output(ctx, "sh", "-c", line)
}

func (e *RecordingExecutor) LookPath(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// Last returns the most recent command.
func (e *RecordingExecutor) Last() (RecordedCommand, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.Commands) == 0 {
		return RecordedCommand{}, false
	}
	return e.Commands[len(e.Commands)-1], true
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
