// Package utils holds small helpers shared by the entrypoint and commands.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter holds log lines while a full-screen UI owns the terminal.
// Flush replays them one write per line so a zerolog.ConsoleWriter can
// format each event.
type DeferredWriter struct {
	mu    sync.Mutex
	lines [][]byte
}

func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = append(d.lines, bytes.Clone(p))
	return len(p), nil
}

// Len returns the number of buffered writes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines)
}

// Flush writes every buffered line to w and empties the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	lines := d.lines
	d.lines = nil
	d.mu.Unlock()

	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
