package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/parley/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// VoiceTemplateData defines available fields for the voice command template.
type VoiceTemplateData struct {
	Lang string
}

// ValidateDeep runs Validate plus checks that touch the filesystem and
// render the voice command template.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = errs.Append(fe.Field, fe.Err)
			}
		} else {
			errs = errs.Append("", err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		}
	}

	if c.Voice.Command != "" {
		if _, err := tmpl.Render(c.Voice.Command, VoiceTemplateData{Lang: c.Voice.Lang}); err != nil {
			errs = errs.Append("voice.command", fmt.Errorf("template error: %w", err))
		}
	}

	return errs.ToError()
}

// Warnings reports settings that work but probably do not do what the user
// expects.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Chat.Endpoint == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Chat",
			Item:     "endpoint",
			Message:  "not set; the push endpoint is derived from each room link",
		})
	}

	if c.Chat.PingInterval == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Chat",
			Item:     "ping_interval",
			Message:  "keepalive pings are disabled; idle connections may be dropped by proxies",
		})
	}

	if c.Dict.AppOrigin != "" && !sameOrigin(c.Dict.BaseURL, c.Dict.AppOrigin) {
		warnings = append(warnings, ValidationWarning{
			Category: "Dictionary",
			Item:     "app_origin",
			Message:  fmt.Sprintf("%s is not the API origin; cookies will not be sent", c.Dict.AppOrigin),
		})
	}

	if c.Dict.UserID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Dictionary",
			Item:     "user_id",
			Message:  "not set; pass --user-id or --launch-url to word commands",
		})
	}

	switch {
	case c.Voice.Command == "":
		warnings = append(warnings, ValidationWarning{
			Category: "Voice",
			Item:     "command",
			Message:  "not set; voice capture is disabled",
		})
	default:
		if prog := program(c.Voice.Command); prog != "" {
			if _, err := exec.LookPath(prog); err != nil {
				warnings = append(warnings, ValidationWarning{
					Category: "Voice",
					Item:     "command",
					Message:  fmt.Sprintf("%s not found on PATH", prog),
				})
			}
		}
	}

	return warnings
}

// program returns the first word of a command template, skipping templates
// whose program name is itself templated.
func program(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 || strings.Contains(fields[0], "{{") {
		return ""
	}
	return fields[0]
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if !slices.Contains(schemes, u.Scheme) || u.Host == "" {
		return fmt.Errorf("must be an absolute %s url", strings.Join(schemes, "/"))
	}
	return nil
}

func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}
