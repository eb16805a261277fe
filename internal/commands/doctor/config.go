package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/parley/internal/core/config"
)

// ConfigCheck validates the loaded configuration and the file it came from.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{config: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.add("Config loaded", StatusFail, "configuration not loaded")
		return result
	}

	switch _, err := os.Stat(c.configPath); {
	case c.configPath == "":
		result.add("Config file", StatusPass, "using defaults")
	case errors.Is(err, os.ErrNotExist):
		result.add("Config file", StatusPass, "not found, using defaults")
	case err == nil:
		result.add("Config file", StatusPass, c.configPath)
	}

	before := len(result.Items)
	for _, fe := range asFieldErrors(c.config.ValidateDeep(c.configPath)) {
		label := fe.Field
		if label == "" {
			label = "validation"
		}
		result.add(label, StatusFail, fe.Err.Error())
	}
	for _, w := range c.config.Warnings() {
		label := w.Category
		if w.Item != "" {
			label = w.Category + "." + w.Item
		}
		result.add(label, StatusWarn, w.Message)
	}

	if len(result.Items) == before {
		result.add("Config valid", StatusPass, "")
	}
	return result
}

func asFieldErrors(err error) criterio.FieldErrors {
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fieldErrs):
		return fieldErrs
	default:
		return criterio.FieldErrors{{Err: err}}
	}
}
