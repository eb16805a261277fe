// Package importer finds word list files on disk and turns them into rows for
// words.Service.Import.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/hay-kot/parley/internal/core/words"
)

var (
	ErrNotText   = errors.New("not a text file")
	ErrNoMatches = errors.New("no files match")
)

const defaultSettle = 300 * time.Millisecond

type Options struct {
	// Settle is how long Watch waits after the last change to a file before
	// importing it. Editors tend to write in bursts.
	Settle time.Duration
	Logger zerolog.Logger
}

type Importer struct {
	fs     afero.Fs
	settle time.Duration
	logger zerolog.Logger
}

func New(fsys afero.Fs, opts Options) *Importer {
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	return &Importer{fs: fsys, settle: opts.Settle, logger: opts.Logger}
}

// Match expands a doublestar pattern such as "lists/**/*.csv". Results are
// sorted and carry the pattern's base directory.
func (im *Importer) Match(pattern string) ([]string, error) {
	base, pat := doublestar.SplitPattern(filepath.ToSlash(pattern))

	fsys := afero.NewIOFS(im.fs)
	if base != "." {
		fsys = afero.NewIOFS(afero.NewBasePathFs(im.fs, filepath.FromSlash(base)))
	}

	found, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", pattern, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatches, pattern)
	}

	out := make([]string, 0, len(found))
	for _, f := range found {
		if base != "." {
			f = path.Join(base, f)
		}
		out = append(out, filepath.FromSlash(f))
	}
	slices.Sort(out)
	return out, nil
}

// Delimiter sniffs the field separator of a file. Content detection wins; for
// plain text the extension decides. Anything that is not text is rejected.
func Delimiter(name string, data []byte) (rune, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("text/tab-separated-values"):
		return '\t', nil
	case mt.Is("text/csv"):
		return ',', nil
	}

	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			if strings.EqualFold(filepath.Ext(name), ".tsv") {
				return '\t', nil
			}
			return ',', nil
		}
	}

	return 0, fmt.Errorf("%s: %w (%s)", name, ErrNotText, mt.String())
}

// Load reads and parses one file.
func (im *Importer) Load(name string) ([]words.Row, error) {
	data, err := afero.ReadFile(im.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	comma, err := Delimiter(name, data)
	if err != nil {
		return nil, err
	}

	rows, err := words.ParseRows(bytes.NewReader(data), name, comma)
	if err != nil {
		return rows, err
	}

	im.logger.Debug().Str("file", name).Int("rows", len(rows)).Str("delimiter", string(comma)).Msg("parsed import file")
	return rows, nil
}

// LoadAll parses every file matched by pattern. A file that cannot be read
// becomes a single failed row so the rest of the batch still runs.
func (im *Importer) LoadAll(pattern string) ([]words.Row, error) {
	files, err := im.Match(pattern)
	if err != nil {
		return nil, err
	}

	var rows []words.Row
	for _, f := range files {
		loaded, err := im.Load(f)
		rows = append(rows, loaded...)
		if err != nil {
			rows = append(rows, words.Row{Source: f, Err: err})
		}
	}
	return rows, nil
}

// Watch calls fn for every file matching pattern that is created or written
// in the pattern's base directory until ctx is done. Subdirectories are not
// watched. Watch needs a real filesystem.
func (im *Importer) Watch(ctx context.Context, pattern string, fn func(name string)) error {
	pattern = filepath.ToSlash(pattern)
	base, _ := doublestar.SplitPattern(pattern)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(filepath.FromSlash(base)); err != nil {
		return fmt.Errorf("watch %s: %w", base, err)
	}
	im.logger.Debug().Str("dir", base).Str("pattern", pattern).Msg("watching for import files")

	pending := map[string]struct{}{}
	settle := time.NewTimer(im.settle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(ev.Name)); !ok {
				continue
			}
			pending[ev.Name] = struct{}{}
			settle.Reset(im.settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Warn().Err(err).Msg("file watcher error")
		case <-settle.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				if isFile(im.fs, name) {
					names = append(names, name)
				}
			}
			clear(pending)
			slices.Sort(names)
			for _, name := range names {
				fn(name)
			}
		}
	}
}

func isFile(fsys afero.Fs, name string) bool {
	info, err := fsys.Stat(name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
