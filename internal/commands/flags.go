package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/core/i18n"
	"github.com/hay-kot/parley/internal/core/launch"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// UserID and LaunchURL feed dictionary identity resolution.
	UserID    string
	LaunchURL string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Lang is the resolved locale for transcripts and dictionary views.
	Lang *i18n.Lang

	// Injector holds lazily built services. It is shut down after the app
	// exits.
	Injector *do.RootScope
}

// Identity is the dictionary user and where the id came from.
type Identity struct {
	UserID string
	Source launch.Source
}

// Setup resolves the user identity and builds the service container. It is
// called from the Before hook once Config is loaded.
func (f *Flags) Setup() error {
	if f.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	userID, source, err := launch.ResolveUserID(f.UserID, f.Config.Dict.UserID, f.LaunchURL)
	if err != nil {
		return fmt.Errorf("resolve user id: %w", err)
	}

	f.Lang = i18n.New(f.Config.Locale)
	f.Injector = NewInjector(f.Config, f.Lang, Identity{UserID: userID, Source: source})
	return nil
}

// Shutdown tears down every service the container built. It is safe to call
// more than once.
func (f *Flags) Shutdown() error {
	if f.Injector == nil {
		return nil
	}
	inj := f.Injector
	f.Injector = nil
	if report := inj.Shutdown(); report != nil && len(report.Errors) > 0 {
		return report
	}
	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "parley", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "parley")
}
