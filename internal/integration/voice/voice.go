// Package voice turns speech into text by running an external recognizer.
// The recognizer is any program that listens on the microphone and prints the
// phrase it heard on stdout.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/pkg/executil"
	"github.com/hay-kot/parley/pkg/tmpl"
)

var (
	ErrUnavailable       = errors.New("voice capture is not configured")
	ErrNothingRecognized = errors.New("nothing recognized")
)

const (
	defaultTimeout = 15 * time.Second
	defaultLang    = "ru-RU"
)

type Options struct {
	// Command is a template such as "listen --lang {{ .Lang | shq }}".
	Command string
	Lang    string
	Timeout time.Duration
	Logger  zerolog.Logger
}

type Recognizer struct {
	exec    executil.Executor
	cmd     *tmpl.Command
	lang    string
	timeout time.Duration
	logger  zerolog.Logger
}

// New parses the command template. An empty command yields a recognizer that
// reports ErrUnavailable.
func New(exec executil.Executor, opts Options) (*Recognizer, error) {
	r := &Recognizer{
		exec:    exec,
		lang:    opts.Lang,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if r.lang == "" {
		r.lang = defaultLang
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}

	if strings.TrimSpace(opts.Command) == "" {
		return r, nil
	}

	cmd, err := tmpl.Parse("voice", opts.Command)
	if err != nil {
		return nil, err
	}
	r.cmd = cmd
	return r, nil
}

func (r *Recognizer) Available() bool {
	return r != nil && r.cmd != nil
}

type data struct {
	Lang string
}

// CommandLine renders the shell command that Listen would run.
func (r *Recognizer) CommandLine() (string, error) {
	if !r.Available() {
		return "", ErrUnavailable
	}
	return r.cmd.Render(data{Lang: r.lang})
}

// Program returns the executable the rendered command line starts with.
func (r *Recognizer) Program() (string, error) {
	line, err := r.CommandLine()
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ErrUnavailable
	}
	return strings.Trim(fields[0], "'\""), nil
}

// Listen runs the recognizer and returns the trimmed phrase.
func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	line, err := r.CommandLine()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	out, err := r.exec.Shell(ctx, line)
	if err != nil {
		return "", fmt.Errorf("run recognizer: %w", err)
	}

	phrase := strings.Join(strings.Fields(string(out)), " ")
	r.logger.Debug().
		Str("lang", r.lang).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(phrase)).
		Msg("voice capture finished")

	if phrase == "" {
		return "", ErrNothingRecognized
	}
	return phrase, nil
}
