package words

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one line of an import file: word, part of speech, translation.
type Row struct {
	Source       string
	Line         int
	Word         string
	PartOfSpeech PartOfSpeech
	Translation  string
	// Err is set when the line could not be parsed.
	Err error
}

// ImportResult reports the outcome for one row.
type ImportResult struct {
	Row Row
	Err error
}

// ParseRows reads delimited rows. A first row whose first cell is "word" is
// treated as a header. Lines starting with # are comments.
func ParseRows(r io.Reader, source string, comma rune) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []Row
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read %s: %w", source, err)
		}

		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "word") {
				continue
			}
		}

		if len(rec) != 3 {
			rows = append(rows, Row{
				Source: source,
				Line:   line,
				Err:    fmt.Errorf("expected 3 columns, got %d", len(rec)),
			})
			continue
		}

		rows = append(rows, Row{
			Source:       source,
			Line:         line,
			Word:         rec[0],
			PartOfSpeech: PartOfSpeech(rec[1]),
			Translation:  rec[2],
		})
	}

	return rows, nil
}

// Import creates every row and reports per-row failures. It stops early only
// when ctx is cancelled.
func (s *Service) Import(ctx context.Context, rows []Row) []ImportResult {
	results := make([]ImportResult, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			results = append(results, ImportResult{Row: row, Err: err})
			continue
		}

		if row.Err != nil {
			results = append(results, ImportResult{Row: row, Err: row.Err})
			continue
		}

		_, err := s.Add(ctx, row.Word, row.PartOfSpeech, row.Translation)
		results = append(results, ImportResult{Row: row, Err: err})
	}
	return results
}
