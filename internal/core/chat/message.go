// Package chat holds the client side of a timed two-party chat room: the
// session lifecycle, identity resolution with its pending buffer, the
// single-shot session lock, and the formatting of transcript bubbles.
package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Message is a chat line produced by the remote backend.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt Timestamp `json:"created_at"`
}

// timestampLayouts are tried in order for string timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a created_at value kept exactly as the server sent it. Parsing
// is deferred to Time so a malformed value never fails message decoding.
type Timestamp struct {
	raw json.RawMessage
}

// NewTimestamp returns a Timestamp holding t in RFC 3339 form.
func NewTimestamp(t time.Time) Timestamp {
	raw, _ := json.Marshal(t.Format(time.RFC3339Nano))
	return Timestamp{raw: raw}
}

// RawTimestamp wraps a string value as the server would have sent it.
func RawTimestamp(s string) Timestamp {
	raw, _ := json.Marshal(s)
	return Timestamp{raw: raw}
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	ts.raw = append(ts.raw[:0], b...)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if len(ts.raw) == 0 {
		return []byte("null"), nil
	}
	return ts.raw, nil
}

// Time parses the raw value. Strings are matched against RFC 3339 and the
// "YYYY-MM-DD HH:MM:SS" forms, numbers are epoch milliseconds.
//
// A string without a zone is read as UTC, not as local time the way a
// browser's Date parser reads it. The result is shown in the configured
// zone, so a server that writes naive UTC times displays correctly anywhere.
func (ts Timestamp) Time() (time.Time, bool) {
	raw := bytes.TrimSpace(ts.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false
		}
		return parseTimestampString(s)
	}

	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// String returns the raw value without JSON quoting.
func (ts Timestamp) String() string {
	var s string
	if err := json.Unmarshal(ts.raw, &s); err == nil {
		return s
	}
	return string(ts.raw)
}

func parseTimestampString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
