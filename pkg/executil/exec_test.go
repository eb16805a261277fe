package executil

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Shell(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	e := &RealExecutor{}

	out, err := e.Shell(context.Background(), "echo out; echo noise >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out), "stderr is not mixed into stdout")

	_, err = e.Shell(context.Background(), "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRecordingExecutor(t *testing.T) {
	boom := errors.New("boom")
	e := &RecordingExecutor{
		Outputs: map[string][]byte{"sh": []byte("hello\n")},
		Errors:  map[string]error{"false": boom},
		Paths:   map[string]string{"whisper": "/usr/bin/whisper"},
	}

	out, err := e.Shell(context.Background(), "listen --lang ru")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = e.Output(context.Background(), "false")
	assert.ErrorIs(t, err, boom)

	last, ok := e.Last()
	require.True(t, ok)
	assert.Equal(t, RecordedCommand{Cmd: "false"}, last)
	assert.Len(t, e.Commands, 2)

	p, err := e.LookPath("whisper")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/whisper", p)
	_, err = e.LookPath("vosk")
	assert.ErrorIs(t, err, exec.ErrNotFound)

	e.Reset()
	_, ok = e.Last()
	assert.False(t, ok)
}
