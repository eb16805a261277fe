package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   []string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no data dir", mutate: func(c *Config) { c.DataDir = "" }, want: []string{"data_dir"}},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, want: []string{"timezone"}},
		{name: "good timezone", mutate: func(c *Config) { c.Timezone = "Europe/Moscow" }},
		{
			name: "negative durations",
			mutate: func(c *Config) {
				c.Chat.SessionDuration = -1
				c.Voice.Timeout = -1
			},
			want: []string{"chat.session_duration", "voice.timeout"},
		},
		{name: "relative base url", mutate: func(c *Config) { c.Dict.BaseURL = "/api" }, want: []string{"dict.base_url"}},
		{name: "ftp endpoint", mutate: func(c *Config) { c.Chat.Endpoint = "ftp://chat.example.com" }, want: []string{"chat.endpoint"}},
		{name: "wss endpoint", mutate: func(c *Config) { c.Chat.Endpoint = "wss://chat.example.com/ws" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ElementsMatch(t, tt.want, fields(t, err))
		})
	}
}

func TestValidateDeep_VoiceTemplate(t *testing.T) {
	cfg := validConfig(t)
	cfg.Voice.Command = "listen --lang {{ .Lang | shq }}"
	assert.NoError(t, cfg.ValidateDeep(""))

	cfg.Voice.Command = "listen --model {{ .Model }}"
	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"voice.command"}, fields(t, err))

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Err.Error(), "template error")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.DataDir = file

	assert.Equal(t, []string{"data_dir"}, fields(t, cfg.ValidateDeep("")))
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)
	assert.Equal(t, []string{"config"}, fields(t, cfg.ValidateDeep(t.TempDir())))
}

func TestValidateDeep_IncludesShallowErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Timezone = "Nowhere/Land"
	cfg.Voice.Command = "{{ .Lang"

	assert.ElementsMatch(t, []string{"timezone", "voice.command"}, fields(t, cfg.ValidateDeep("")))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Chat.Endpoint = "wss://chat.example.com/ws"
	cfg.Dict.UserID = "42"
	cfg.Voice.Command = "definitely-not-a-real-recognizer --lang {{ .Lang }}"
	cfg.Dict.AppOrigin = "https://app.example.com"

	warnings := cfg.Warnings()

	items := make([]string, 0, len(warnings))
	for _, w := range warnings {
		items = append(items, w.Category+"/"+w.Item)
	}
	assert.ElementsMatch(t, []string{"Dictionary/app_origin", "Voice/command"}, items)
}

func TestWarnings_Defaults(t *testing.T) {
	cfg := validConfig(t)

	items := make([]string, 0)
	for _, w := range cfg.Warnings() {
		items = append(items, w.Item)
	}
	assert.ElementsMatch(t, []string{"endpoint", "user_id", "command"}, items)
}

func TestProgram(t *testing.T) {
	assert.Equal(t, "listen", program("listen --lang {{ .Lang }}"))
	assert.Equal(t, "", program("{{ .Bin }} --lang ru"))
	assert.Equal(t, "", program("   "))
}
