package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/i18n"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/styles"
)

const requestTimeout = 15 * time.Second

// Listener captures one spoken phrase.
type Listener interface {
	Available() bool
	Listen(ctx context.Context) (string, error)
}

// WordsOptions configures the dictionary view.
type WordsOptions struct {
	Service       *words.Service
	Voice         Listener // optional
	Lang          *i18n.Lang
	ToastDuration time.Duration
	Logger        zerolog.Logger
}

type wordsState int

const (
	wordsNormal wordsState = iota
	wordsSearching
	wordsAdding
	wordsConfirming
)

type wordsLoadedMsg struct {
	list []words.Word
	err  error
}

type statsLoadedMsg struct {
	stats words.Stats
	err   error
}

type searchDoneMsg struct {
	query string
	word  words.Word
	err   error
}

type wordAddedMsg struct {
	word words.NewWord
	err  error
}

type wordDeletedMsg struct {
	id  words.ID
	err error
}

type voiceDoneMsg struct {
	text string
	err  error
}

// WordsModel is the Bubble Tea model of the dictionary.
type WordsModel struct {
	service *words.Service
	voice   Listener
	lang    *i18n.Lang
	logger  zerolog.Logger

	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	toast   Toast
	form    *AddWordForm
	modal   Confirm

	state      wordsState
	activeView ViewType
	list       []words.Word
	loaded     bool
	stats      words.Stats
	result     string
	pendingID  words.ID
	loading    int
	width      int
	height     int
}

func NewWordsModel(opts WordsOptions) WordsModel {
	if opts.Lang == nil {
		opts.Lang = i18n.New("en")
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "word"
	search.PromptStyle = lipgloss.NewStyle().Foreground(styles.ColorBlue)

	t := table.New(table.WithFocused(true), table.WithHeight(10))
	t.SetStyles(tableStyles())

	m := WordsModel{
		service: opts.Service,
		voice:   opts.Voice,
		lang:    opts.Lang,
		logger:  opts.Logger,
		table:   t,
		search:  search,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		toast:   NewToast(opts.ToastDuration),
		width:   80,
		height:  24,
	}
	m.layout()
	return m
}

func (m WordsModel) Init() tea.Cmd {
	return tea.Batch(m.loadWords(), m.spinner.Tick)
}

func (m WordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.toast.Update(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case wordsLoadedMsg:
		m.done()
		if msg.err != nil {
			cmd := m.toast.Show(ToastError, m.errorText(msg.err))
			return m, cmd
		}
		m.setWords(msg.list)
		return m, nil

	case statsLoadedMsg:
		m.done()
		if msg.err != nil {
			cmd := m.toast.Show(ToastError, m.errorText(msg.err))
			return m, cmd
		}
		m.stats = msg.stats
		return m, nil

	case searchDoneMsg:
		m.done()
		switch {
		case errors.Is(msg.err, words.ErrNotFound):
			m.result = msg.query + ": " + m.lang.T(i18n.NotFound)
		case msg.err != nil:
			cmd := m.toast.Show(ToastError, m.errorText(msg.err))
			return m, cmd
		default:
			m.result = fmt.Sprintf("%s (%s) → %s", msg.word.Word, msg.word.PartOfSpeech.Label(m.lang), msg.word.Translation)
		}
		return m, nil

	case wordAddedMsg:
		m.done()
		if msg.err != nil {
			cmd := m.toast.Show(ToastError, m.errorText(msg.err))
			return m, cmd
		}
		if words.LooksSwapped(msg.word.Word, msg.word.Translation) {
			m.result = "hint: word and translation look swapped"
		}
		cmd := tea.Batch(m.toast.Show(ToastSuccess, m.lang.T(i18n.WordAdded, msg.word.Word)), m.reload())
		return m, cmd

	case wordDeletedMsg:
		m.done()
		if msg.err != nil {
			cmd := m.toast.Show(ToastError, m.errorText(msg.err))
			return m, cmd
		}
		cmd := tea.Batch(m.toast.Show(ToastSuccess, m.lang.T(i18n.WordDeleted)), m.reload())
		return m, cmd

	case voiceDoneMsg:
		m.done()
		if msg.err != nil {
			cmd := m.toast.Error(msg.err)
			return m, cmd
		}
		m.search.SetValue(msg.text)
		m.state = wordsSearching
		cmd := m.search.Focus()
		return m, cmd
	}

	switch m.state {
	case wordsAdding:
		return m.updateForm(msg)
	case wordsSearching:
		return m.updateSearch(msg)
	case wordsConfirming:
		if k, ok := msg.(tea.KeyMsg); ok {
			return m.handleConfirmKey(k)
		}
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(k)
	}
	return m, nil
}

func (m WordsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyQuit, keyBack):
		return m, tea.Quit

	case key.Matches(msg, wordsKeys.Tab):
		if m.activeView == ViewWords {
			m.activeView = ViewStats
		} else {
			m.activeView = ViewWords
		}
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, wordsKeys.Refresh):
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, wordsKeys.Add):
		m.form = NewAddWordForm(m.lang, m.search.Value())
		m.state = wordsAdding
		return m, m.form.Form().Init()

	case key.Matches(msg, wordsKeys.Search):
		m.state = wordsSearching
		m.search.SetValue("")
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, wordsKeys.Voice):
		if !m.voiceAvailable() {
			return m, nil
		}
		m.loading++
		cmd := tea.Batch(m.toast.Show(ToastInfo, "listening…"), m.listen(), m.spinner.Tick)
		return m, cmd

	case key.Matches(msg, wordsKeys.Delete):
		w, ok := m.selected()
		if !ok || m.activeView != ViewWords {
			return m, nil
		}
		m.pendingID = w.ID
		m.modal = NewConfirm("Delete word", fmt.Sprintf("Delete %q (%s)?", w.Word, w.Translation), "Delete")
		m.state = wordsConfirming
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m WordsModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.modal.HandleKey(msg) {
	case ConfirmAccepted:
		m.state = wordsNormal
		m.loading++
		cmd := tea.Batch(m.deleteWord(m.pendingID), m.spinner.Tick)
		return m, cmd
	case ConfirmDismissed:
		m.state = wordsNormal
	}
	return m, nil
}

func (m WordsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.state = wordsNormal
			m.search.Blur()
			return m, nil
		case "enter":
			m.state = wordsNormal
			m.search.Blur()
			m.loading++
			cmd := tea.Batch(m.searchWord(m.search.Value()), m.spinner.Tick)
			return m, cmd
		case "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m WordsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.state = wordsNormal
		m.form = nil
		return m, nil
	}

	model, cmd := m.form.Form().Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form.form = f
	}

	switch m.form.Form().State {
	case huh.StateCompleted:
		result := m.form.Result()
		m.state = wordsNormal
		m.form = nil
		m.loading++
		cmd = tea.Batch(m.addWord(result), m.spinner.Tick)
		return m, cmd
	case huh.StateAborted:
		m.state = wordsNormal
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *WordsModel) done() {
	if m.loading > 0 {
		m.loading--
	}
}

// reload refreshes whichever view is visible.
func (m *WordsModel) reload() tea.Cmd {
	m.loading++
	if m.activeView == ViewStats {
		return tea.Batch(m.loadStats(), m.spinner.Tick)
	}
	return tea.Batch(m.loadWords(), m.spinner.Tick)
}

func (m *WordsModel) setWords(list []words.Word) {
	m.list = list
	m.loaded = true

	rows := make([]table.Row, len(list))
	for i, w := range list {
		rows[i] = table.Row{w.Word, w.PartOfSpeech.Label(m.lang), w.Translation}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m WordsModel) selected() (words.Word, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.list) {
		return words.Word{}, false
	}
	return m.list[i], true
}

func (m *WordsModel) layout() {
	wordW := max(m.width/4, 12)
	posW := 16
	transW := max(m.width-wordW-posW-8, 12)
	m.table.SetColumns([]table.Column{
		{Title: "Word", Width: wordW},
		{Title: "Part of speech", Width: posW},
		{Title: "Translation", Width: transW},
	})
	// header + tabs (3), result (1), status (1), table header (2)
	m.table.SetHeight(max(m.height-7, 3))
	m.search.Width = max(m.width-4, 10)
}

func (m WordsModel) errorText(err error) string {
	if errors.Is(err, words.ErrNoUser) {
		return m.lang.T(i18n.NoUser)
	}
	return err.Error()
}

func (m WordsModel) loadWords() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := svc.List(ctx)
		return wordsLoadedMsg{list: list, err: err}
	}
}

func (m WordsModel) loadStats() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := svc.Stats(ctx)
		return statsLoadedMsg{stats: st, err: err}
	}
}

func (m WordsModel) searchWord(q string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		w, err := svc.Search(ctx, q)
		return searchDoneMsg{query: q, word: w, err: err}
	}
}

func (m WordsModel) addWord(r AddWordResult) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		nw, err := svc.Add(ctx, r.Word, r.PartOfSpeech, r.Translation)
		return wordAddedMsg{word: nw, err: err}
	}
}

func (m WordsModel) deleteWord(id words.ID) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return wordDeletedMsg{id: id, err: svc.Delete(ctx, id)}
	}
}

func (m WordsModel) listen() tea.Cmd {
	v := m.voice
	return func() tea.Msg {
		text, err := v.Listen(context.Background())
		return voiceDoneMsg{text: text, err: err}
	}
}

func (m WordsModel) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.TitleStyle.Render("parley"),
		"  ",
		m.renderTabs(),
	)

	var body string
	switch m.activeView {
	case ViewStats:
		body = m.renderStats()
	default:
		body = m.renderWords()
	}

	var line string
	if m.state == wordsSearching {
		line = m.search.View()
	} else {
		line = searchResultStyle.Render(m.result)
	}

	main := lipgloss.JoinVertical(lipgloss.Left, header, "", body, line, m.renderStatus())

	switch m.state {
	case wordsAdding:
		if m.form != nil {
			content := lipgloss.JoinVertical(lipgloss.Left, modalTitleStyle.Render("Add word"), "", m.form.View())
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(content))
		}
	case wordsConfirming:
		return m.modal.View(m.width, m.height)
	}
	return main
}

func (m WordsModel) renderTabs() string {
	wordsTab, statsTab := viewNormalStyle.Render("Words"), viewNormalStyle.Render("Stats")
	if m.activeView == ViewWords {
		wordsTab = viewSelectedStyle.Render("Words")
	} else {
		statsTab = viewSelectedStyle.Render("Stats")
	}
	return wordsTab + subtleStyle.Render("│") + statsTab
}

func (m WordsModel) renderWords() string {
	if m.loaded && len(m.list) == 0 {
		return subtleStyle.PaddingLeft(1).Render(m.lang.T(i18n.EmptyDict))
	}
	return m.table.View()
}

func (m WordsModel) renderStats() string {
	row := func(label string, n int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			styles.StatLabelStyle.Width(20).Render(label),
			styles.StatValueStyle.Render(m.lang.Number(n)),
		)
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		row(m.lang.T(i18n.TotalWords), m.stats.TotalWords),
		row(m.lang.T(i18n.Nouns), m.stats.Nouns),
		row(m.lang.T(i18n.Verbs), m.stats.Verbs),
	))
}

func (m WordsModel) renderStatus() string {
	if t := m.toast.View(); t != "" {
		return " " + t
	}
	if m.loading > 0 {
		return " " + m.spinner.View()
	}
	voice := wordsKeys.Voice
	voice.SetEnabled(m.voiceAvailable())
	return styles.HelpStyle.Render(helpLine(
		wordsKeys.Add, wordsKeys.Search, wordsKeys.Delete, voice,
		wordsKeys.Refresh, wordsKeys.Tab, keyBack,
	))
}

func (m WordsModel) voiceAvailable() bool {
	return m.voice != nil && m.voice.Available()
}

// RunWords runs the dictionary view until the user quits.
func RunWords(ctx context.Context, opts WordsOptions) error {
	p := tea.NewProgram(NewWordsModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run dictionary view: %w", err)
	}
	return nil
}
