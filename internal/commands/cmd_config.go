package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hay-kot/criterio"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/printer"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate configuration file",
				UsageText: "parley config validate [options]",
				Description: `Validates the configuration file together with PARLEY_* overrides:
durations, URLs, the time zone, the voice command template and the data directory.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "parley config show",
				Description: "Prints the configuration after defaults and PARLEY_* overrides as YAML.",
				Action:      cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cmd.flags.Config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	err := cfg.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cfg.Warnings()

	if cmd.format == "json" {
		return cmd.outputJSON(c, err, warnings)
	}

	return cmd.outputText(printer.Ctx(ctx), err, warnings)
}

type fieldErrorJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigCmd) outputJSON(c *cli.Command, validationErr error, warnings []config.ValidationWarning) error {
	var errs []fieldErrorJSON
	for _, fe := range fieldErrors(validationErr) {
		errs = append(errs, fieldErrorJSON{Field: fe.Field, Message: fe.Err.Error()})
	}

	return writeJSON(c, struct {
		Valid    bool                       `json:"valid"`
		Path     string                     `json:"path"`
		Errors   []fieldErrorJSON           `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	}{
		Valid:    validationErr == nil,
		Path:     cmd.flags.ConfigPath,
		Errors:   errs,
		Warnings: warnings,
	})
}

// fieldErrors flattens a validation error. Errors that are not field errors
// become a single entry without a field.
func fieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *ConfigCmd) outputText(p *printer.Printer, validationErr error, warnings []config.ValidationWarning) error {
	p.KeyValue("config", cmd.flags.ConfigPath)
	p.KeyValue("data dir", cmd.flags.Config.DataDir)
	p.Printf("")

	errs := fieldErrors(validationErr)
	if len(errs) > 0 {
		p.Section("Errors")
		for _, fe := range errs {
			label := fe.Field
			if label == "" {
				label = "config"
			}
			p.FailItem(label, fe.Err.Error())
		}
		p.Printf("")
	}

	byCategory := lo.GroupBy(warnings, func(w config.ValidationWarning) string { return w.Category })
	categories := lo.Keys(byCategory)
	slices.Sort(categories)

	for _, category := range categories {
		p.Section(category)
		for _, w := range byCategory[category] {
			p.WarnItem(w.Item, w.Message)
		}
		p.Printf("")
	}

	switch {
	case validationErr != nil:
		p.Errorf("%d error(s), %d warning(s)", len(errs), len(warnings))
		return cli.Exit("", 1)
	case len(warnings) > 0:
		p.Successf("Configuration is valid (%d warning(s))", len(warnings))
	default:
		p.Successf("Configuration is valid")
	}
	return nil
}
