package words

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/hay-kot/parley/internal/core/i18n"
)

// Card is a word inside a review deck.
type Card struct {
	Word  Word
	Known bool
}

// Markdown renders the card face. The back adds the translation.
func (c Card) Markdown(lang *i18n.Lang, back bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n_%s_\n", c.Word.Word, c.Word.PartOfSpeech.Label(lang))
	if back {
		fmt.Fprintf(&b, "\n**%s**\n", c.Word.Translation)
	}
	return b.String()
}

// ProgressStore remembers which words a user has marked known.
type ProgressStore interface {
	Known(ctx context.Context, userID string) (map[ID]bool, error)
	SetKnown(ctx context.Context, userID string, id ID, known bool) error
}

// Shuffler is satisfied by *rand.Rand from math/rand and math/rand/v2.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Deck is an ordered review session over a user's words. Navigation wraps
// around at both ends and always shows the front of the new card.
type Deck struct {
	cards   []Card
	pos     int
	flipped bool
}

// NewDeck builds a deck from list. With unknownOnly, words already marked
// known are left out.
func NewDeck(list []Word, known map[ID]bool, unknownOnly bool) *Deck {
	cards := make([]Card, 0, len(list))
	for _, w := range list {
		k := known[w.ID]
		if unknownOnly && k {
			continue
		}
		cards = append(cards, Card{Word: w, Known: k})
	}
	return &Deck{cards: cards}
}

func (d *Deck) Len() int { return len(d.cards) }

// Index is the zero-based position of the current card.
func (d *Deck) Index() int { return d.pos }

func (d *Deck) Flipped() bool { return d.flipped }

// Current returns the card under review. ok is false for an empty deck.
func (d *Deck) Current() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[d.pos], true
}

func (d *Deck) Flip() {
	if len(d.cards) == 0 {
		return
	}
	d.flipped = !d.flipped
}

func (d *Deck) Next() {
	d.move(1)
}

func (d *Deck) Prev() {
	d.move(-1)
}

func (d *Deck) move(step int) {
	n := len(d.cards)
	if n == 0 {
		return
	}
	d.pos = ((d.pos+step)%n + n) % n
	d.flipped = false
}

// Shuffle reorders the deck with r and returns to the first card.
func (d *Deck) Shuffle(r Shuffler) {
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.pos = 0
	d.flipped = false
}

// Mark sets the known flag on the current card and returns it.
func (d *Deck) Mark(known bool) (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	d.cards[d.pos].Known = known
	return d.cards[d.pos], true
}

// Progress returns how many cards are known out of the deck size.
func (d *Deck) Progress() (known, total int) {
	return lo.CountBy(d.cards, func(c Card) bool { return c.Known }), len(d.cards)
}
