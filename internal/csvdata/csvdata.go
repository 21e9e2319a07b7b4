// Package csvdata reads tab-separated result sheets into header-keyed rows.
package csvdata

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/starford/pinfall/internal/table"
)

// Delimiter separates fields in result sheets.
const Delimiter = '\t'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Warning describes a malformed record that was still ingested best-effort.
type Warning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Result is a parsed sheet.
type Result struct {
	// Headers are the trimmed, de-duplicated header names in sheet order.
	Headers  []string
	Rows     []table.Row
	Warnings []Warning
}

// ParseFile reads and parses the sheet at path.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a tab-separated sheet whose first record is the header.
// Blank lines are skipped and empty input yields an empty result. Records with the wrong number of fields are kept
// and reported as warnings; missing trailing fields are absent from the row
// and extra fields are dropped.
func Parse(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	res := &Result{Headers: []string{}, Rows: []table.Row{}}

	var header []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Warnings = append(res.Warnings, Warning{Line: perr.Line, Message: perr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("csvdata: read: %w", err)
		}
		if isBlank(record) {
			continue
		}

		if header == nil {
			header = make([]string, len(record))
			for i, h := range record {
				header[i] = strings.TrimSpace(h)
			}
			res.Headers = uniqueHeaders(header)
			continue
		}

		line, _ := cr.FieldPos(0)

		switch {
		case len(record) < len(header):
			res.Warnings = append(res.Warnings, Warning{Line: line, Message: fmt.Sprintf("too few fields: expected %d, got %d", len(header), len(record))})
		case len(record) > len(header):
			res.Warnings = append(res.Warnings, Warning{Line: line, Message: fmt.Sprintf("too many fields: expected %d, got %d", len(header), len(record))})
		}

		row := make(table.Row, len(header))
		for i, key := range header {
			if key == "" || i >= len(record) {
				continue
			}
			row[key] = record[i]
		}
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// uniqueHeaders drops empty names and repeats, keeping first occurrences.
func uniqueHeaders(header []string) []string {
	seen := make(map[string]struct{}, len(header))
	out := make([]string, 0, len(header))
	for _, h := range header {
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
