// Package words is the vocabulary domain: words, parts of speech, statistics,
// input validation and the flashcard deck.
package words

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/hay-kot/parley/internal/core/i18n"
)

var (
	ErrNotFound   = errors.New("word not found")
	ErrNoUser     = errors.New("user id is not set")
	ErrNoID       = errors.New("word id is not set")
	ErrEmptyQuery = errors.New("search word is empty")
)

// PartOfSpeech is the grammatical category stored with a word.
type PartOfSpeech string

const (
	Noun      PartOfSpeech = "noun"
	Verb      PartOfSpeech = "verb"
	Adjective PartOfSpeech = "adjective"
	Adverb    PartOfSpeech = "adverb"
	Other     PartOfSpeech = "other"
)

// PartsOfSpeech lists the known codes in display order.
var PartsOfSpeech = []PartOfSpeech{Noun, Verb, Adjective, Adverb, Other}

var posKeys = map[PartOfSpeech]string{
	Noun:      i18n.Noun,
	Verb:      i18n.Verb,
	Adjective: i18n.Adjective,
	Adverb:    i18n.Adverb,
	Other:     i18n.Other,
}

// Known reports whether p is one of PartsOfSpeech.
func (p PartOfSpeech) Known() bool {
	_, ok := posKeys[p]
	return ok
}

// Label is the localized, title-cased name. Unknown codes are shown as-is.
func (p PartOfSpeech) Label(lang *i18n.Lang) string {
	key, ok := posKeys[p]
	if !ok {
		return string(p)
	}
	return lang.Title(lang.T(key))
}

// ID is a server-assigned identifier. The API may send it as a JSON number or
// a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Word is a dictionary entry.
type Word struct {
	ID           ID           `json:"id"`
	UserID       ID           `json:"user_id"`
	Word         string       `json:"word"`
	PartOfSpeech PartOfSpeech `json:"part_of_speech"`
	Translation  string       `json:"translation"`
}

// Stats is the per-user aggregate. Missing fields decode as zero.
type Stats struct {
	TotalWords int `json:"total_words"`
	Nouns      int `json:"nouns"`
	Verbs      int `json:"verbs"`
}

// Store is the remote word API.
type Store interface {
	List(ctx context.Context, userID string) ([]Word, error)
	Create(ctx context.Context, w NewWord) error
	Search(ctx context.Context, userID, word string) (Word, error)
	Delete(ctx context.Context, userID string, id ID) error
	Stats(ctx context.Context, userID string) (Stats, error)
}
