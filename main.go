package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/commands"
	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	// .env is read before flags are parsed so PARLEY_* values in it reach
	// both flag sources and config overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "parley",
		Usage:     "Chat rooms and a vocabulary trainer in your terminal",
		UsageText: "parley [global options] command [command options]",
		Description: `Parley is a terminal client for a push-channel chat room and a personal
dictionary service.

Run 'parley chat <room-url>' to join a room.
Run 'parley words' to browse your dictionary, or 'parley review' for flashcards.`,
		Version: build(),
		Flags:   globalFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Full-screen views own the terminal; buffer logs until they exit.
			var deferred io.Writer
			if commands.Interactive(c.Args().Slice()) {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if err := flags.Setup(); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
	}

	app = commands.NewChatCmd(flags).Register(app)
	app = commands.NewWordsCmd(flags).Register(app)
	app = commands.NewReviewCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	if err := flags.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("service shutdown")
	}

	// Flush deferred logs to console after the view exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

// globalFlags are shared by every command. Each one can also be set from a
// PARLEY_* variable, including ones loaded from .env.
func globalFlags(flags *commands.Flags) []cli.Flag {
	env := func(name string) cli.ValueSourceChain { return cli.EnvVars("PARLEY_" + name) }

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     env("LOG_LEVEL"),
			Value:       "info",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (optional)",
			Sources:     env("LOG_FILE"),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     env("CONFIG"),
			Value:       commands.DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     env("DATA_DIR"),
			Value:       commands.DefaultDataDir(),
			Destination: &flags.DataDir,
		},
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "dictionary user id",
			Sources:     env("USER_ID"),
			Destination: &flags.UserID,
		},
		&cli.StringFlag{
			Name:        "launch-url",
			Usage:       "mini-app launch link to read the user id from",
			Sources:     env("LAUNCH_URL"),
			Destination: &flags.LaunchURL,
		},
	}
}

// setupLogger points the global logger at the console, a log file, or both.
// While a full-screen view runs, console output goes to deferred instead.
func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	var console io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if deferred != nil {
		console = deferred
	}
	sinks := []io.Writer{console}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, file)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(sinks...)).Level(parsedLevel)
	return nil
}
