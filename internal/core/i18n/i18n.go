// Package i18n resolves the user-facing locale and translates the handful of
// strings parley shows inside transcripts and dictionary views.
package i18n

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translation keys. English text doubles as the key.
const (
	You           = "You"
	JustNow       = "just now"
	SessionLocked = "Session ended. Chat is locked."
	EmptyDict     = "Dictionary is empty. Start adding words!"
	NotFound      = "not found"
	NoUser        = "user id is not set"
	WordAdded     = "Word %q added"
	WordDeleted   = "Word deleted"
	ServerError   = "server error (%d)"

	Noun      = "noun"
	Verb      = "verb"
	Adjective = "adjective"
	Adverb    = "adverb"
	Other     = "other"

	TotalWords = "Total words"
	Nouns      = "Nouns"
	Verbs      = "Verbs"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

var russian = map[string]string{
	You:           "Вы",
	JustNow:       "только что",
	SessionLocked: "Сессия завершена. Чат заблокирован.",
	EmptyDict:     "Словарь пуст. Начните добавлять слова!",
	NotFound:      "не найдено",
	NoUser:        "не указан идентификатор пользователя",
	WordAdded:     "Слово %q добавлено",
	WordDeleted:   "Слово удалено",
	ServerError:   "ошибка сервера (%d)",
	Noun:          "существительное",
	Verb:          "глагол",
	Adjective:     "прилагательное",
	Adverb:        "наречие",
	Other:         "другое",
	TotalWords:    "Всего слов",
	Nouns:         "Существительные",
	Verbs:         "Глаголы",
}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range russian {
		if err := b.SetString(language.Russian, key, msg); err != nil {
			panic(err)
		}
	}
	return b
}

// Lang is a resolved locale.
type Lang struct {
	tag     language.Tag
	printer *message.Printer
}

// New resolves a BCP 47 name such as "ru-RU" or "en" against the supported
// locales. Unknown or empty names fall back to English.
func New(name string) *Lang {
	want, err := language.Parse(name)
	if err != nil {
		want = language.English
	}

	_, idx, _ := matcher.Match(want)
	tag := supported[idx]

	return &Lang{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Tag returns the matched language.
func (l *Lang) Tag() language.Tag {
	return l.tag
}

// T translates key and formats it with args.
func (l *Lang) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Number formats n with the locale's digit grouping.
func (l *Lang) Number(n int) string {
	return l.printer.Sprintf("%d", n)
}

// Title upper-cases the first letter of each word using the locale's rules.
func (l *Lang) Title(s string) string {
	return cases.Title(l.tag).String(s)
}

// TimeLayout is the time-of-day layout used for message bubbles.
func (l *Lang) TimeLayout() string {
	if l.tag == language.English {
		return "03:04 PM"
	}
	return "15:04"
}
