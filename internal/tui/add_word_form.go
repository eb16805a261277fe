package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/parley/internal/core/i18n"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/styles"
)

// AddWordForm wraps a huh.Form for adding a word.
type AddWordForm struct {
	form        *huh.Form
	word        string
	pos         words.PartOfSpeech
	translation string
}

// AddWordResult contains the form submission result.
type AddWordResult struct {
	Word         string
	PartOfSpeech words.PartOfSpeech
	Translation  string
}

// NewAddWordForm creates the form. word pre-fills the first field, e.g. with
// a phrase captured by voice.
func NewAddWordForm(lang *i18n.Lang, word string) *AddWordForm {
	f := &AddWordForm{word: word, pos: words.Noun}

	options := make([]huh.Option[words.PartOfSpeech], len(words.PartsOfSpeech))
	for i, p := range words.PartsOfSpeech {
		options[i] = huh.NewOption(p.Label(lang), p)
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Word").
				Value(&f.word).
				Validate(required("word")),
			huh.NewSelect[words.PartOfSpeech]().
				Title("Part of speech").
				Options(options...).
				Value(&f.pos),
			huh.NewInput().
				Title("Translation").
				Value(&f.translation).
				Validate(required("translation")),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *AddWordForm) Form() *huh.Form {
	return f.form
}

// Result returns the entered values. Only valid once the form completed.
func (f *AddWordForm) Result() AddWordResult {
	return AddWordResult{
		Word:         f.word,
		PartOfSpeech: f.pos,
		Translation:  f.translation,
	}
}

func (f *AddWordForm) View() string {
	return f.form.View()
}
