package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/parley/internal/core/i18n"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/importer"
	"github.com/hay-kot/parley/internal/integration/voice"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/internal/styles"
	"github.com/hay-kot/parley/internal/tui"
)

type WordsCmd struct {
	flags *Flags

	format string
	pos    string
	voice  bool
	yes    bool
	watch  bool
}

func NewWordsCmd(flags *Flags) *WordsCmd {
	return &WordsCmd{flags: flags}
}

func (cmd *WordsCmd) formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Usage:       "output format (text, json)",
		Value:       "text",
		Destination: &cmd.format,
	}
}

func (cmd *WordsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "words",
		Usage:     "Manage your dictionary",
		UsageText: "parley words [command] [options]",
		Description: `Without a subcommand, opens the interactive dictionary.

The user is resolved from --user-id (PARLEY_USER_ID), then dict.user_id in the
config, then the mini-app link given with --launch-url.`,
		Action: cmd.runView,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List words",
				UsageText: "parley words ls [options]",
				Flags:     []cli.Flag{cmd.formatFlag()},
				Action:    cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add a word",
				UsageText: "parley words add [options] [word] [translation]",
				Description: `Adds a word. Missing arguments are asked for in a form when the
terminal is interactive.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "pos",
						Aliases:     []string{"p"},
						Usage:       "part of speech (noun, verb, adjective, adverb, other)",
						Value:       string(words.Noun),
						Destination: &cmd.pos,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "search",
				Usage:     "Look up a word",
				UsageText: "parley words search [options] [word]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "voice",
						Usage:       "capture the word with the configured recognizer",
						Destination: &cmd.voice,
					},
					cmd.formatFlag(),
				},
				Action: cmd.runSearch,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a word by id",
				UsageText: "parley words rm [options] <id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runDelete,
			},
			{
				Name:      "stats",
				Usage:     "Show dictionary statistics",
				UsageText: "parley words stats [options]",
				Flags:     []cli.Flag{cmd.formatFlag()},
				Action:    cmd.runStats,
			},
			{
				Name:      "import",
				Usage:     "Import words from CSV or TSV files",
				UsageText: "parley words import [options] <glob>",
				Description: `Reads word, part of speech and translation columns from every file
matching the pattern ("lists/**/*.csv"). With --watch, keeps running and imports
files as they are written to the pattern's directory.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "watch",
						Aliases:     []string{"w"},
						Usage:       "import new and changed files until interrupted",
						Destination: &cmd.watch,
					},
				},
				Action: cmd.runImport,
			},
		},
	})
	return app
}

func (cmd *WordsCmd) service() (*words.Service, error) {
	return do.Invoke[*words.Service](cmd.flags.Injector)
}

func (cmd *WordsCmd) lang() *i18n.Lang {
	return cmd.flags.Lang
}

func (cmd *WordsCmd) runView(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("unknown command %q. Run 'parley words --help' for usage", c.Args().First())
	}

	svc, err := cmd.service()
	if err != nil {
		return err
	}
	rec, err := do.Invoke[*voice.Recognizer](cmd.flags.Injector)
	if err != nil {
		return err
	}

	return tui.RunWords(ctx, tui.WordsOptions{
		Service:       svc,
		Voice:         rec,
		Lang:          cmd.lang(),
		ToastDuration: cmd.flags.Config.TUI.ToastDuration,
		Logger:        log.With().Str("component", "words-view").Logger(),
	})
}

func (cmd *WordsCmd) runList(ctx context.Context, c *cli.Command) error {
	svc, err := cmd.service()
	if err != nil {
		return err
	}

	list, err := svc.List(ctx)
	if err != nil {
		return err
	}

	if cmd.format == "json" {
		return writeJSON(c, list)
	}

	p := printer.Ctx(ctx)
	if len(list) == 0 {
		p.Infof("%s", cmd.lang().T(i18n.EmptyDict))
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, w := range list {
		rows = append(rows, []string{w.ID.String(), w.Word, w.PartOfSpeech.Label(cmd.lang()), w.Translation})
	}
	p.Table([]string{"id", "word", "part of speech", "translation"}, rows)
	return nil
}

func (cmd *WordsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	svc, err := cmd.service()
	if err != nil {
		return err
	}

	word := c.Args().Get(0)
	translation := c.Args().Get(1)
	pos := words.PartOfSpeech(strings.ToLower(strings.TrimSpace(cmd.pos)))

	if strings.TrimSpace(word) == "" || strings.TrimSpace(translation) == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("word and translation are required")
		}

		form := tui.NewAddWordForm(cmd.lang(), word)
		if err := form.Form().RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("add word form: %w", err)
		}
		res := form.Result()
		word, pos, translation = res.Word, res.PartOfSpeech, res.Translation
	}

	added, err := svc.Add(ctx, word, pos, translation)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	p.Successf("%s", cmd.lang().T(i18n.WordAdded, added.Word))
	if words.LooksSwapped(added.Word, added.Translation) {
		p.Warnf("the word looks Cyrillic and the translation Latin; were the fields swapped?")
	}
	return nil
}

func (cmd *WordsCmd) runSearch(ctx context.Context, c *cli.Command) error {
	svc, err := cmd.service()
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")
	if cmd.voice {
		rec, err := do.Invoke[*voice.Recognizer](cmd.flags.Injector)
		if err != nil {
			return err
		}
		heard, err := rec.Listen(ctx)
		if err != nil {
			return fmt.Errorf("voice capture: %w", err)
		}
		query = heard
	}

	found, err := svc.Search(ctx, query)
	notFound := errors.Is(err, words.ErrNotFound)
	if err != nil && !notFound {
		return err
	}

	if cmd.format == "json" {
		return writeJSON(c, struct {
			Query string      `json:"query"`
			Found bool        `json:"found"`
			Word  *words.Word `json:"word,omitempty"`
		}{Query: query, Found: !notFound, Word: wordPtr(found, !notFound)})
	}

	p := printer.Ctx(ctx)
	if notFound {
		p.Warnf("%s: %s", strings.TrimSpace(query), cmd.lang().T(i18n.NotFound))
		return cli.Exit("", 1)
	}
	p.Printf("%s (%s) %s %s", p.Bold(found.Word), found.PartOfSpeech.Label(cmd.lang()), printer.Arrow, found.Translation)
	return nil
}

func wordPtr(w words.Word, ok bool) *words.Word {
	if !ok {
		return nil
	}
	return &w
}

func (cmd *WordsCmd) runDelete(ctx context.Context, c *cli.Command) error {
	svc, err := cmd.service()
	if err != nil {
		return err
	}

	id := words.ID(strings.TrimSpace(c.Args().First()))
	if id == "" {
		return words.ErrNoID
	}

	if !cmd.yes {
		subject := "word " + id.String()
		if list, err := svc.List(ctx); err == nil {
			if w, ok := words.Find(list, id); ok {
				subject = fmt.Sprintf("%q (%s)", w.Word, w.Translation)
			}
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to delete %s without confirmation; pass --yes", subject)
		}

		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Delete " + subject + "?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme()).RunWithContext(ctx)
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm delete: %w", err)
		}
		if !confirmed {
			printer.Ctx(ctx).Infof("cancelled")
			return nil
		}
	}

	if err := svc.Delete(ctx, id); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("%s", cmd.lang().T(i18n.WordDeleted))
	return nil
}

func (cmd *WordsCmd) runStats(ctx context.Context, c *cli.Command) error {
	svc, err := cmd.service()
	if err != nil {
		return err
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		return err
	}

	if cmd.format == "json" {
		return writeJSON(c, st)
	}

	lang := cmd.lang()
	p := printer.Ctx(ctx)
	p.KeyValue(lang.T(i18n.TotalWords), lang.Number(st.TotalWords))
	p.KeyValue(lang.T(i18n.Nouns), lang.Number(st.Nouns))
	p.KeyValue(lang.T(i18n.Verbs), lang.Number(st.Verbs))
	return nil
}

func (cmd *WordsCmd) runImport(ctx context.Context, c *cli.Command) error {
	pattern := c.Args().First()
	if pattern == "" {
		return fmt.Errorf("a file pattern is required")
	}

	svc, err := cmd.service()
	if err != nil {
		return err
	}
	im, err := do.Invoke[*importer.Importer](cmd.flags.Injector)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	rows, err := im.LoadAll(pattern)
	if err != nil && !(cmd.watch && errors.Is(err, importer.ErrNoMatches)) {
		return err
	}
	failed := reportImport(p, svc.Import(ctx, rows))

	if !cmd.watch {
		if failed > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	p.Infof("watching %s (ctrl+c to stop)", pattern)
	return im.Watch(ctx, pattern, func(name string) {
		rows, err := im.Load(name)
		if err != nil && len(rows) == 0 {
			p.Errorf("%s: %v", name, err)
			return
		}
		reportImport(p, svc.Import(ctx, rows))
	})
}

// reportImport prints one line per row and returns the number of failures.
func reportImport(p *printer.Printer, results []words.ImportResult) int {
	var added, failed int
	for _, r := range results {
		where := r.Row.Source
		if r.Row.Line > 0 {
			where = fmt.Sprintf("%s:%d", where, r.Row.Line)
		}

		if r.Err != nil {
			failed++
			p.FailItem(where, r.Err.Error())
			continue
		}
		added++
		p.CheckItem(where, r.Row.Word)
	}

	if len(results) > 0 {
		p.Printf("Imported %d, failed %d", added, failed)
	}
	return failed
}

func writeJSON(c *cli.Command, v any) error {
	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
