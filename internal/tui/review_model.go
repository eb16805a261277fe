package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/i18n"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/styles"
)

const maxCardWidth = 60

// ReviewOptions configures the flashcard view.
type ReviewOptions struct {
	Deck     *words.Deck
	Progress words.ProgressStore
	UserID   string
	Lang     *i18n.Lang
	// Rand shuffles the deck. Defaults to a time-seeded source.
	Rand          words.Shuffler
	ToastDuration time.Duration
	Logger        zerolog.Logger
}

type progressSavedMsg struct {
	word  string
	known bool
	err   error
}

// ReviewModel is the Bubble Tea model of a flashcard review.
type ReviewModel struct {
	deck     *words.Deck
	progress words.ProgressStore
	userID   string
	lang     *i18n.Lang
	rand     words.Shuffler
	logger   zerolog.Logger

	renderer *glamour.TermRenderer
	toast    Toast
	width    int
	height   int
}

func NewReviewModel(opts ReviewOptions) ReviewModel {
	if opts.Lang == nil {
		opts.Lang = i18n.New("en")
	}
	if opts.Rand == nil {
		now := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(now, now>>32))
	}

	m := ReviewModel{
		deck:     opts.Deck,
		progress: opts.Progress,
		userID:   opts.UserID,
		lang:     opts.Lang,
		rand:     opts.Rand,
		logger:   opts.Logger,
		toast:    NewToast(opts.ToastDuration),
		width:    80,
		height:   24,
	}
	m.renderer = newCardRenderer(maxCardWidth, m.logger)
	return m
}

func newCardRenderer(width int, logger zerolog.Logger) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("markdown renderer unavailable, showing raw cards")
		return nil
	}
	return r
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.toast.Update(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderer = newCardRenderer(min(max(m.width-8, 20), maxCardWidth), m.logger)
		return m, nil

	case progressSavedMsg:
		if msg.err != nil {
			cmd := m.toast.Error(msg.err)
			return m, cmd
		}
		text := fmt.Sprintf("%s marked unknown", msg.word)
		if msg.known {
			text = fmt.Sprintf("%s marked known", msg.word)
		}
		cmd := m.toast.Show(ToastSuccess, text)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyQuit, keyBack):
		return m, tea.Quit
	case key.Matches(msg, reviewKeys.Flip):
		m.deck.Flip()
	case key.Matches(msg, reviewKeys.Next):
		m.deck.Next()
	case key.Matches(msg, reviewKeys.Prev):
		m.deck.Prev()
	case key.Matches(msg, reviewKeys.Shuffle):
		m.deck.Shuffle(m.rand)
	case key.Matches(msg, reviewKeys.Known):
		return m, m.mark(true)
	case key.Matches(msg, reviewKeys.Unknown):
		return m, m.mark(false)
	}
	return m, nil
}

// mark flags the current card and persists the change.
func (m ReviewModel) mark(known bool) tea.Cmd {
	card, ok := m.deck.Mark(known)
	if !ok || m.progress == nil {
		return nil
	}

	store, userID := m.progress, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := store.SetKnown(ctx, userID, card.Word.ID, known)
		return progressSavedMsg{word: card.Word.Word, known: known, err: err}
	}
}

func (m ReviewModel) View() string {
	known, total := m.deck.Progress()
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.TitleStyle.Render("parley review"),
		subtleStyle.Render(fmt.Sprintf("  %d/%d known", known, total)),
	)

	card, ok := m.deck.Current()
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			subtleStyle.PaddingLeft(1).Render("No cards to review."),
			"",
			styles.HelpStyle.Render(helpLine(keyBack)),
		)
	}

	face := m.renderCard(card)
	position := subtleStyle.Render(fmt.Sprintf("%d / %d", m.deck.Index()+1, m.deck.Len()))
	if card.Known {
		position += "  " + styles.KnownStyle.Render(iconKnown+" known")
	}

	status := m.toast.View()
	if status == "" {
		status = styles.HelpStyle.Render(helpLine(
			reviewKeys.Flip, reviewKeys.Prev, reviewKeys.Next, reviewKeys.Known,
			reviewKeys.Unknown, reviewKeys.Shuffle, keyBack,
		))
	} else {
		status = " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.CardStyle.Render(face)),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, position),
		"",
		status,
	)
}

func (m ReviewModel) renderCard(card words.Card) string {
	md := card.Markdown(m.lang, m.deck.Flipped())
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		m.logger.Debug().Err(err).Msg("render card")
		return md
	}
	return strings.Trim(out, "\n")
}

// RunReview runs the flashcard view until the user quits.
func RunReview(ctx context.Context, opts ReviewOptions) error {
	p := tea.NewProgram(NewReviewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run review view: %w", err)
	}
	return nil
}
