// Package transcript persists chat transcripts per room in a Pebble key-value
// store.
package transcript

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/chat"
)

// Keys are the room id, a zero byte, then an 8-byte big-endian sequence
// number that increases monotonically across the whole store.
const sep = 0x00

// Store is an append-only transcript log.
type Store struct {
	db   *pebble.DB
	mu   sync.Mutex
	next uint64
}

var _ chat.TranscriptLog = (*Store)(nil)

// Open opens or creates the store in dir.
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{
		Logger: pebbleLogger{logger: logger},
	})
	if err != nil {
		return nil, fmt.Errorf("open transcript store: %w", err)
	}

	s := &Store{db: db}

	next, err := s.maxSeq()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.next = next
	return s, nil
}

// maxSeq scans every room's last key for the highest sequence number.
func (s *Store) maxSeq() (uint64, error) {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return 0, fmt.Errorf("open iterator: %w", err)
	}
	defer func() { _ = it.Close() }()

	var next uint64
	for valid := it.First(); valid; {
		room, seq, ok := splitKey(it.Key())
		if !ok {
			valid = it.Next()
			continue
		}

		_, upper := roomBounds(room)
		if it.SeekLT(upper) {
			if _, last, ok := splitKey(it.Key()); ok {
				seq = last
			}
		}
		if seq+1 > next {
			next = seq + 1
		}
		valid = it.SeekGE(upper)
	}

	return next, nil
}

// Append adds an entry to the room's transcript.
func (s *Store) Append(room string, e chat.Entry) error {
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := makeKey(room, s.next)
	if err := s.db.Set(key, val, pebble.Sync); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	s.next++
	return nil
}

// Recent returns the last limit entries of a room in chronological order.
// A limit <= 0 returns the whole transcript.
func (s *Store) Recent(room string, limit int) ([]chat.Entry, error) {
	lower, upper := roomBounds(room)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("open iterator: %w", err)
	}
	defer func() { _ = it.Close() }()

	var out []chat.Entry
	for valid := it.Last(); valid; valid = it.Prev() {
		if limit > 0 && len(out) == limit {
			break
		}

		var e chat.Entry
		if err := json.Unmarshal(it.Value(), &e); err != nil {
			continue
		}
		out = append(out, e)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Rooms lists the rooms that have a transcript, in key order.
func (s *Store) Rooms() ([]string, error) {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("open iterator: %w", err)
	}
	defer func() { _ = it.Close() }()

	var rooms []string
	for valid := it.First(); valid; {
		room, _, ok := splitKey(it.Key())
		if !ok {
			valid = it.Next()
			continue
		}
		rooms = append(rooms, room)
		_, upper := roomBounds(room)
		valid = it.SeekGE(upper)
	}
	return rooms, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Shutdown closes the store when the service container is torn down.
func (s *Store) Shutdown() error {
	return s.Close()
}

func makeKey(room string, seq uint64) []byte {
	key := make([]byte, 0, len(room)+1+8)
	key = append(key, room...)
	key = append(key, sep)
	return binary.BigEndian.AppendUint64(key, seq)
}

func splitKey(key []byte) (room string, seq uint64, ok bool) {
	if len(key) < 9 || key[len(key)-9] != sep {
		return "", 0, false
	}
	return string(key[:len(key)-9]), binary.BigEndian.Uint64(key[len(key)-8:]), true
}

// roomBounds returns [room\x00, room\x01), covering every sequence number
// of the room and nothing else.
func roomBounds(room string) (lower, upper []byte) {
	lower = append([]byte(room), sep)
	upper = append(bytes.Clone([]byte(room)), sep+1)
	return lower, upper
}

// pebbleLogger routes pebble's internal logging through zerolog.
type pebbleLogger struct {
	logger zerolog.Logger
}

func (l pebbleLogger) Infof(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l pebbleLogger) Fatalf(format string, args ...any) {
	l.logger.Fatal().Msgf(format, args...)
}
