// Package config handles configuration loading and validation for parley.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. PARLEY_CHAT_ENDPOINT.
const EnvPrefix = "PARLEY"

// Config holds the application configuration.
type Config struct {
	Locale   string      `yaml:"locale"`
	Timezone string      `yaml:"timezone"`
	Chat     ChatConfig  `yaml:"chat"`
	Dict     DictConfig  `yaml:"dict"`
	Voice    VoiceConfig `yaml:"voice"`
	TUI      TUIConfig   `yaml:"tui"`
	DataDir  string      `yaml:"-" ignored:"true"` // set by caller, not from config file
}

// ChatConfig configures the chat room client.
type ChatConfig struct {
	// Endpoint is the push server URL. Empty means "derive from the room link".
	Endpoint         string        `yaml:"endpoint"`
	SessionDuration  time.Duration `yaml:"session_duration" split_words:"true"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" split_words:"true"`
	PingInterval     time.Duration `yaml:"ping_interval" split_words:"true"`
	// HistoryLimit caps how many entries `chat log` prints by default.
	HistoryLimit int  `yaml:"history_limit" split_words:"true"`
	Record       bool `yaml:"record"`
}

// DictConfig configures the dictionary API client.
type DictConfig struct {
	BaseURL   string        `yaml:"base_url" split_words:"true"`
	AppOrigin string        `yaml:"app_origin" split_words:"true"`
	UserID    string        `yaml:"user_id" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout"`
}

// VoiceConfig configures the external speech recognizer.
type VoiceConfig struct {
	// Command is a shell template. Available variables: {{ .Lang }}.
	Command string        `yaml:"command"`
	Lang    string        `yaml:"lang"`
	Timeout time.Duration `yaml:"timeout"`
}

// TUIConfig configures the interactive views.
type TUIConfig struct {
	ToastDuration time.Duration `yaml:"toast_duration" split_words:"true"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Locale: "ru",
		Chat: ChatConfig{
			SessionDuration:  900 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			PingInterval:     25 * time.Second,
			HistoryLimit:     50,
			Record:           true,
		},
		Dict: DictConfig{
			BaseURL:   "https://dict.lllang.site",
			AppOrigin: "https://dict.lllang.site",
			Timeout:   15 * time.Second,
		},
		Voice: VoiceConfig{
			Lang:    "ru-RU",
			Timeout: 15 * time.Second,
		},
		TUI: TUIConfig{
			ToastDuration: 3500 * time.Millisecond,
		},
	}
}

// Load reads configuration from the given path, applies PARLEY_* environment
// overrides and sets the data directory. A missing config file yields the
// defaults.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.DataDir = dataDir

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Locale == "" {
		c.Locale = defaults.Locale
	}
	if c.Chat.SessionDuration == 0 {
		c.Chat.SessionDuration = defaults.Chat.SessionDuration
	}
	if c.Chat.HandshakeTimeout == 0 {
		c.Chat.HandshakeTimeout = defaults.Chat.HandshakeTimeout
	}
	if c.Chat.HistoryLimit == 0 {
		c.Chat.HistoryLimit = defaults.Chat.HistoryLimit
	}
	if c.Dict.BaseURL == "" {
		c.Dict.BaseURL = defaults.Dict.BaseURL
	}
	if c.Dict.Timeout == 0 {
		c.Dict.Timeout = defaults.Dict.Timeout
	}
	if c.Voice.Lang == "" {
		c.Voice.Lang = defaults.Voice.Lang
	}
	if c.Voice.Timeout == 0 {
		c.Voice.Timeout = defaults.Voice.Timeout
	}
	if c.TUI.ToastDuration == 0 {
		c.TUI.ToastDuration = defaults.TUI.ToastDuration
	}
}

// Validate checks the values Load cannot repair. ValidateDeep adds checks
// that touch the filesystem.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = errs.Append("timezone", fmt.Errorf("unknown time zone %q", c.Timezone))
		}
	}

	if c.Chat.SessionDuration < 0 {
		errs = errs.Append("chat.session_duration", fmt.Errorf("must be positive"))
	}
	if c.Chat.HandshakeTimeout < 0 {
		errs = errs.Append("chat.handshake_timeout", fmt.Errorf("must be positive"))
	}
	if c.Chat.PingInterval < 0 {
		errs = errs.Append("chat.ping_interval", fmt.Errorf("must be zero or positive"))
	}
	if c.Chat.HistoryLimit < 0 {
		errs = errs.Append("chat.history_limit", fmt.Errorf("must be zero or positive"))
	}
	if c.Chat.Endpoint != "" {
		if err := checkURL(c.Chat.Endpoint, "ws", "wss", "http", "https"); err != nil {
			errs = errs.Append("chat.endpoint", err)
		}
	}

	if err := checkURL(c.Dict.BaseURL, "http", "https"); err != nil {
		errs = errs.Append("dict.base_url", err)
	}
	if c.Dict.AppOrigin != "" {
		if err := checkURL(c.Dict.AppOrigin, "http", "https"); err != nil {
			errs = errs.Append("dict.app_origin", err)
		}
	}
	if c.Dict.Timeout < 0 {
		errs = errs.Append("dict.timeout", fmt.Errorf("must be positive"))
	}

	if c.Voice.Timeout < 0 {
		errs = errs.Append("voice.timeout", fmt.Errorf("must be positive"))
	}
	if c.TUI.ToastDuration < 0 {
		errs = errs.Append("tui.toast_duration", fmt.Errorf("must be positive"))
	}

	return errs.ToError()
}

// Location returns the configured time zone, or the local one.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TranscriptDir returns the directory of the local chat transcript log.
func (c *Config) TranscriptDir() string {
	return filepath.Join(c.DataDir, "transcripts")
}

// ProgressFile returns the path of the flashcard progress JSON file.
func (c *Config) ProgressFile() string {
	return filepath.Join(c.DataDir, "progress.json")
}
