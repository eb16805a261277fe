package chat

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/i18n"
)

// Bubble is a formatted transcript entry.
type Bubble struct {
	Sender string
	Label  string
	Text   string
	Time   string
	Mine   bool
}

// Meta is the line shown above the text, e.g. "You • 14:05".
func (b Bubble) Meta() string {
	return b.Label + " • " + b.Time
}

// Formatter turns messages into bubbles for one locale and time zone.
type Formatter struct {
	lang   *i18n.Lang
	loc    *time.Location
	logger zerolog.Logger
}

// NewFormatter returns a Formatter. A nil lang means English and a nil loc
// means the local time zone.
func NewFormatter(lang *i18n.Lang, loc *time.Location, logger zerolog.Logger) Formatter {
	if lang == nil {
		lang = i18n.New("en")
	}
	if loc == nil {
		loc = time.Local
	}
	return Formatter{lang: lang, loc: loc, logger: logger}
}

// Format builds the bubble for msg. An unparsable timestamp is logged and
// rendered with the localized "just now" label.
func (f Formatter) Format(msg Message, mine bool) Bubble {
	label := msg.Sender
	if mine {
		label = f.lang.T(i18n.You)
	}

	return Bubble{
		Sender: msg.Sender,
		Label:  label,
		Text:   msg.Text,
		Time:   f.timeLabel(msg.CreatedAt),
		Mine:   mine,
	}
}

// LockedNotice is the notice appended when the session locks.
func (f Formatter) LockedNotice() string {
	return f.lang.T(i18n.SessionLocked)
}

func (f Formatter) timeLabel(ts Timestamp) string {
	t, ok := ts.Time()
	if !ok {
		f.logger.Warn().Str("created_at", ts.String()).Msg("invalid message timestamp")
		return f.lang.T(i18n.JustNow)
	}
	return t.In(f.loc).Format(f.lang.TimeLayout())
}
