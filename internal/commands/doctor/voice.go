package doctor

import (
	"context"

	"github.com/hay-kot/parley/internal/integration/voice"
	"github.com/hay-kot/parley/pkg/executil"
)

// VoiceCheck verifies the speech recognizer command can be started.
type VoiceCheck struct {
	recognizer *voice.Recognizer
	exec       executil.Executor
}

func NewVoiceCheck(r *voice.Recognizer, exec executil.Executor) *VoiceCheck {
	return &VoiceCheck{recognizer: r, exec: exec}
}

func (c *VoiceCheck) Name() string {
	return "Voice"
}

func (c *VoiceCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.recognizer.Available() {
		result.add("Recognizer", StatusWarn, "voice.command not set; voice search is disabled")
		return result
	}

	line, err := c.recognizer.CommandLine()
	if err != nil {
		result.add("Command", StatusFail, err.Error())
		return result
	}
	result.add("Command", StatusPass, line)

	prog, err := c.recognizer.Program()
	if err != nil {
		result.add("Program", StatusFail, err.Error())
		return result
	}

	path, err := c.exec.LookPath(prog)
	if err != nil {
		result.add("Program", StatusFail, prog+" not found on PATH")
		return result
	}
	result.add("Program", StatusPass, path)
	return result
}
