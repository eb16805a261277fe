package commands

import (
	"context"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/commands/doctor"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/dictapi"
	"github.com/hay-kot/parley/internal/integration/voice"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/pkg/executil"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	fix    bool
	room   string
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Run health checks on your parley setup",
		UsageText: "parley doctor [options]",
		Description: `Checks the configuration, the dictionary API, the chat endpoint, the voice
recognizer and the local review progress.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "remove review progress for words that no longer exist",
				Destination: &cmd.fix,
			},
			&cli.StringFlag{
				Name:        "room",
				Usage:       "room link to derive the chat endpoint from",
				Destination: &cmd.room,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	var (
		cfg    = cmd.flags.Config
		inj    = cmd.flags.Injector
		checks = []doctor.Check{doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath)}
	)
	if cfg == nil || inj == nil {
		return checks
	}

	id := do.MustInvoke[Identity](inj)

	var pinger doctor.Pinger
	if client, err := do.Invoke[*dictapi.Client](inj); err == nil {
		pinger = client
	}
	checks = append(checks,
		doctor.NewDictionaryCheck(pinger, cfg.Dict.BaseURL, id.UserID),
		doctor.NewChatCheck(cfg.Chat.Endpoint, cmd.room),
	)

	if rec, err := do.Invoke[*voice.Recognizer](inj); err == nil {
		checks = append(checks, doctor.NewVoiceCheck(rec, do.MustInvoke[executil.Executor](inj)))
	}

	svc, err := do.Invoke[*words.Service](inj)
	if err != nil {
		return checks
	}
	progress, err := do.Invoke[words.ProgressStore](inj)
	if err != nil {
		return checks
	}
	return append(checks, doctor.NewProgressCheck(svc, progress, cmd.fix))
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, doctor.DefaultCheckTimeout, cmd.checks()...)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(ctx, results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	counts := doctor.Tally(results)

	return writeJSON(c, struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Counts   `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: counts.Healthy(),
		Summary: counts,
		Checks:  results,
	})
}

func (cmd *DoctorCmd) outputText(ctx context.Context, results []doctor.Result) error {
	p := printer.Ctx(ctx)

	for _, result := range results {
		p.Section(result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	counts := doctor.Tally(results)
	p.Printf("Summary: %d passed, %d warnings, %d failed", counts.Passed, counts.Warned, counts.Failed)

	if counts.Fixable > 0 {
		p.Infof("%d issue(s) can be fixed with 'parley doctor --fix'", counts.Fixable)
	}

	if !counts.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}
