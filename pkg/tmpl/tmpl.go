// Package tmpl renders user-configured command lines.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// shellQuote wraps s in single quotes and escapes embedded single quotes with
// the '\'' sequence.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// primary returns the language part of a tag such as "ru-RU".
func primary(tag string) string {
	tag, _, _ = strings.Cut(tag, "-")
	tag, _, _ = strings.Cut(tag, "_")
	return strings.ToLower(tag)
}

var funcs = template.FuncMap{
	"shq":     shellQuote,
	"primary": primary,
}

// Command is a parsed command-line template. Available functions:
//   - shq: shell-quote a value
//   - primary: reduce a language tag to its language ("ru-RU" to "ru")
type Command struct {
	src string
	t   *template.Template
}

// Parse compiles text. Undefined keys are an error at render time.
func Parse(name, text string) (*Command, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	return &Command{src: text, t: t}, nil
}

func (c *Command) String() string {
	return c.src
}

// Render executes the template and trims surrounding whitespace.
func (c *Command) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := c.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", c.t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Render parses and executes text in one step.
func Render(text string, data any) (string, error) {
	c, err := Parse("command", text)
	if err != nil {
		return "", err
	}
	return c.Render(data)
}
