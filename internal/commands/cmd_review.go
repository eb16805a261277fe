package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/internal/tui"
)

type ReviewCmd struct {
	flags   *Flags
	unknown bool
}

func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Review your words as flashcards",
		UsageText: "parley review [options]",
		Description: `Opens a flashcard deck over your dictionary. Cards marked known are
remembered per user in the data directory.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "unknown",
				Aliases:     []string{"u"},
				Usage:       "only show cards not yet marked known",
				Destination: &cmd.unknown,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ReviewCmd) run(ctx context.Context, _ *cli.Command) error {
	svc, err := do.Invoke[*words.Service](cmd.flags.Injector)
	if err != nil {
		return err
	}
	progress, err := do.Invoke[words.ProgressStore](cmd.flags.Injector)
	if err != nil {
		return err
	}

	list, err := svc.List(ctx)
	if err != nil {
		return err
	}
	known, err := progress.Known(ctx, svc.UserID())
	if err != nil {
		return fmt.Errorf("load review progress: %w", err)
	}

	deck := words.NewDeck(list, known, cmd.unknown)
	if deck.Len() == 0 {
		printer.Ctx(ctx).Infof("no cards to review")
		return nil
	}

	return tui.RunReview(ctx, tui.ReviewOptions{
		Deck:          deck,
		Progress:      progress,
		UserID:        svc.UserID(),
		Lang:          cmd.flags.Lang,
		ToastDuration: cmd.flags.Config.TUI.ToastDuration,
		Logger:        log.With().Str("component", "review").Logger(),
	})
}
