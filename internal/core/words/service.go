package words

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Service runs dictionary operations for one user. Every operation checks the
// user id and its inputs before calling the store.
type Service struct {
	store  Store
	userID string
	logger zerolog.Logger
}

func NewService(store Store, userID string, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		userID: strings.TrimSpace(userID),
		logger: logger,
	}
}

// UserID returns the user the service acts for.
func (s *Service) UserID() string {
	return s.userID
}

func (s *Service) List(ctx context.Context) ([]Word, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}

	list, err := s.store.List(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}

	s.logger.Debug().Int("count", len(list)).Msg("loaded words")
	return list, nil
}

// Add validates and creates a word. The normalized payload is returned so
// callers can report what was stored.
func (s *Service) Add(ctx context.Context, word string, pos PartOfSpeech, translation string) (NewWord, error) {
	nw := NewWord{
		UserID:       s.userID,
		Word:         word,
		PartOfSpeech: pos,
		Translation:  translation,
	}.Normalize()

	if err := nw.Validate(); err != nil {
		return nw, err
	}

	if err := s.store.Create(ctx, nw); err != nil {
		return nw, fmt.Errorf("add word %q: %w", nw.Word, err)
	}

	s.logger.Info().Str("word", nw.Word).Str("pos", string(nw.PartOfSpeech)).Msg("word added")
	return nw, nil
}

// Search looks up a word. The query is trimmed but not lower-cased.
func (s *Service) Search(ctx context.Context, word string) (Word, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Word{}, ErrEmptyQuery
	}
	if s.userID == "" {
		return Word{}, ErrNoUser
	}

	found, err := s.store.Search(ctx, s.userID, word)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Word{}, err
		}
		return Word{}, fmt.Errorf("search %q: %w", word, err)
	}
	return found, nil
}

func (s *Service) Delete(ctx context.Context, id ID) error {
	id = ID(strings.TrimSpace(string(id)))
	if id == "" {
		return ErrNoID
	}
	if s.userID == "" {
		return ErrNoUser
	}

	if err := s.store.Delete(ctx, s.userID, id); err != nil {
		return fmt.Errorf("delete word %s: %w", id, err)
	}

	s.logger.Info().Str("id", id.String()).Msg("word deleted")
	return nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.userID == "" {
		return Stats{}, ErrNoUser
	}

	st, err := s.store.Stats(ctx, s.userID)
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return st, nil
}

// Find returns the word with the given id from a listing.
func Find(list []Word, id ID) (Word, bool) {
	return lo.Find(list, func(w Word) bool { return w.ID == id })
}

// Filter keeps the words whose text or translation contains q, ignoring case.
func Filter(list []Word, q string) []Word {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list
	}
	return lo.Filter(list, func(w Word, _ int) bool {
		return strings.Contains(strings.ToLower(w.Word), q) ||
			strings.Contains(strings.ToLower(w.Translation), q)
	})
}
