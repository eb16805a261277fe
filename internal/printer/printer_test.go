package printer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Successf("Word %q added", "cat")
	p.Errorf("server error (%d)", 500)
	p.Infof("nothing to do")

	assert.Equal(t, "✔ Word \"cat\" added\n✘ server error (500)\n• nothing to do\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[", "a buffer is not a terminal")
}

func TestPrinter_FatalError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.FatalError(fmt.Errorf("dial chat.example.com: connection refused"))
	assert.Equal(t, "╭ Error\n│ dial chat.example.com: connection refused\n╵\n", buf.String())

	buf.Reset()
	var errs criterio.FieldErrorsBuilder
	errs = errs.Append("word", fmt.Errorf("is required"))
	p.FatalError(fmt.Errorf("add word: %w", errs.ToError()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "╭ Validation Error\n│ add word\n│\n"), out)
	assert.Contains(t, out, "│ ✘ word: is required\n")

	buf.Reset()
	p.FatalError(nil)
	assert.Empty(t, buf.String())
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.Table([]string{"id", "word"}, [][]string{{"1", "cat"}, {"22", "dog"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "WORD")
	assert.Contains(t, lines[2], "dog")
}

func TestCtx_Default(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	assert.Same(t, p, Ctx(NewContext(context.Background(), p)))
	assert.NotNil(t, Ctx(context.Background()))
}
