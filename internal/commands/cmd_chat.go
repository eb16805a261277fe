package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/launch"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/internal/pushchan"
	"github.com/hay-kot/parley/internal/store/transcript"
	"github.com/hay-kot/parley/internal/tui"
)

type ChatCmd struct {
	flags *Flags

	// chat flags
	room  string
	token string
	plain bool

	// log flags
	last   int
	format string
}

func NewChatCmd(flags *Flags) *ChatCmd {
	return &ChatCmd{flags: flags}
}

func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Join a chat room",
		UsageText: "parley chat [options] [room-url]",
		Description: `Connects to the push channel of a room and opens the chat view.

The room id and token are read from the room link (the last path segment and
the token query parameter). --room and --token override them. Without
chat.endpoint in the config the push endpoint is derived from the link's host.

The session locks after chat.session_duration or when the server ends it.
Use --plain to print the transcript as lines and send stdin lines as messages.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "room",
				Usage:       "room id (overrides the room link)",
				Destination: &cmd.room,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "access token (overrides the room link)",
				Sources:     cli.EnvVars("PARLEY_CHAT_TOKEN"),
				Destination: &cmd.token,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "line mode without the interactive view",
				Destination: &cmd.plain,
			},
		},
		Action: cmd.run,
		Commands: []*cli.Command{
			{
				Name:      "log",
				Usage:     "Show the local transcript of a room",
				UsageText: "parley chat log [options] [room]",
				Description: `Prints the transcript recorded while chat.record is enabled.
Without a room, lists the rooms that have a transcript.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "last",
						Aliases:     []string{"n"},
						Usage:       "number of entries to show (0 for config default)",
						Destination: &cmd.last,
					},
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runLog,
			},
		},
	})
	return app
}

// resolveRoom combines the room link with the --room and --token overrides.
func resolveRoom(roomURL, roomID, token string) (launch.Room, error) {
	room := launch.Room{ID: strings.TrimSpace(roomID), Token: token}

	if strings.TrimSpace(roomURL) != "" {
		parsed, err := launch.ParseRoomURL(roomURL)
		if err != nil && room.ID == "" {
			return launch.Room{}, err
		}
		if room.ID == "" {
			room.ID = parsed.ID
		}
		if room.Token == "" {
			room.Token = parsed.Token
		}
	}

	if room.ID == "" {
		return launch.Room{}, launch.ErrNoRoom
	}
	return room, nil
}

func (cmd *ChatCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	roomURL := c.Args().First()

	room, err := resolveRoom(roomURL, cmd.room, cmd.token)
	if err != nil {
		return err
	}

	endpoint := cfg.Chat.Endpoint
	if endpoint == "" {
		endpoint = launch.EndpointFor(roomURL)
	}
	if endpoint == "" {
		return fmt.Errorf("no push endpoint: set chat.endpoint or pass a room link")
	}

	logger := log.With().Str("component", "chat").Str("room", room.ID).Logger()

	var (
		sink     chat.Sink
		viewSink *tui.ChannelSink
	)
	if cmd.plain {
		sink = chat.NewLineSink(c.Root().Writer)
	} else {
		viewSink = tui.NewChannelSink(0)
		sink = viewSink
	}

	if cfg.Chat.Record {
		store, err := do.Invoke[*transcript.Store](cmd.flags.Injector)
		if err != nil {
			logger.Warn().Err(err).Msg("transcript unavailable, not recording")
		} else {
			sink = chat.NewRecorder(sink, store, room.ID, nil, logger)
		}
	}

	session := chat.NewSession(sink, chat.Options{
		Duration: cfg.Chat.SessionDuration,
		Lang:     cmd.flags.Lang,
		Location: cfg.Location(),
		Logger:   logger,
	})
	defer session.Close()

	client, err := pushchan.Dial(ctx, pushchan.Options{
		Endpoint:         endpoint,
		HandshakeTimeout: cfg.Chat.HandshakeTimeout,
		PingInterval:     cfg.Chat.PingInterval,
		Logger:           logger,
	}, room)
	if err != nil {
		return fmt.Errorf("connect to room %s: %w", room.ID, err)
	}
	session.Attach(client)

	if cmd.plain {
		return runPlainChat(ctx, os.Stdin, client, session, logger)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, session)
	}()

	return tui.RunChat(ctx, tui.ChatOptions{
		Session:       session,
		Sink:          viewSink,
		Room:          room.ID,
		Done:          done,
		ToastDuration: cfg.TUI.ToastDuration,
		Logger:        logger,
	})
}

// chatRunner is the part of the push client line mode drives.
type chatRunner interface {
	Run(ctx context.Context, h chat.Handler) error
}

// runPlainChat sends every non-blank input line until the connection ends or
// input is exhausted.
func runPlainChat(ctx context.Context, in io.Reader, client chatRunner, session *chat.Session, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, session)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok {
				cancel()
				return <-done
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := session.Send(ctx, line); err != nil {
				if errors.Is(err, chat.ErrSessionLocked) {
					logger.Info().Msg("session locked, message not sent")
					continue
				}
				logger.Warn().Err(err).Msg("send failed")
			}
		}
	}
}

func (cmd *ChatCmd) runLog(ctx context.Context, c *cli.Command) error {
	store, err := do.Invoke[*transcript.Store](cmd.flags.Injector)
	if err != nil {
		return err
	}

	room := c.Args().First()
	if room == "" {
		return cmd.listRooms(ctx, c, store)
	}

	limit := cmd.last
	if limit <= 0 {
		limit = cmd.flags.Config.Chat.HistoryLimit
	}

	entries, err := store.Recent(room, limit)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	if cmd.format == "json" {
		return writeJSON(c, entries)
	}

	p := printer.Ctx(ctx)
	if len(entries) == 0 {
		p.Infof("no transcript for room %s", room)
		return nil
	}

	p.Section("Room " + room)
	for _, e := range entries {
		switch e.Kind {
		case chat.EntryClear:
			p.Printf("%s", strings.Repeat("─", 32))
		case chat.EntryNotice:
			p.Warnf("%s", e.Text)
		default:
			meta := e.Label
			if e.Time != "" {
				meta += " " + printer.Dot + " " + e.Time
			}
			p.Printf("%s", p.Bold(meta))
			p.Printf("  %s", e.Text)
		}
	}
	return nil
}

func (cmd *ChatCmd) listRooms(ctx context.Context, c *cli.Command, store *transcript.Store) error {
	rooms, err := store.Rooms()
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	if cmd.format == "json" {
		return writeJSON(c, rooms)
	}

	p := printer.Ctx(ctx)
	if len(rooms) == 0 {
		p.Infof("no transcripts recorded yet")
		return nil
	}
	for _, room := range rooms {
		p.Printf("%s", room)
	}
	return nil
}
