// Package table resolves result-table column layouts and sorts result rows.
package table

import (
	"math"
	"strconv"
	"strings"
)

// Column value types.
const (
	TypeNumber = "number"
	TypeString = "string"
)

// Row is one result record keyed by trimmed header name.
type Row map[string]string

// Column is a fully resolved table column.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Sortable bool   `json:"sortable"`
	Width    string `json:"width"`
}

// ColumnSpec is a column as declared in meta.json. Empty fields are inferred.
type ColumnSpec struct {
	Key      string `json:"key"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type,omitempty"`
	Sortable *bool  `json:"sortable,omitempty"`
	Width    string `json:"width,omitempty"`
}

// Hints is a list of lowercase substrings that mark a header as numeric.
type Hints []string

// DefaultHints are the header fragments used by bowling result sheets.
var DefaultHints = Hints{"place", "game", "series", "hcp", "average", "pace", "scratch"}

// Match reports whether header contains any hint, case-insensitively.
func (h Hints) Match(header string) bool {
	lower := strings.ToLower(header)
	for _, hint := range h {
		if hint != "" && strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// InferType returns the column type for key. An explicit type always wins.
func (h Hints) InferType(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if h.Match(key) {
		return TypeNumber
	}
	return TypeString
}

// IsNumericValue reports whether a cell should be aligned as a number: either
// the value parses or the header looks numeric.
func IsNumericValue(value, header string, hints Hints) bool {
	if _, ok := ParseNumber(value); ok {
		return true
	}
	return hints.Match(header)
}

// ParseNumber parses s after removing thousands separators and surrounding
// whitespace. Empty and non-finite values do not parse.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// WildcardWidth is the WidthMap key used for unknown labels.
const WildcardWidth = "*"

// WidthMap maps a column label to a minimum-width CSS class.
type WidthMap map[string]string

// DefaultWidths holds the preset widths for common result columns.
var DefaultWidths = WidthMap{
	"Place": "min-w-[4rem]",
	"Squad": "min-w-[4rem]",
	"HCP":   "min-w-[4rem]",
	"Pace":  "min-w-[4rem]",

	"Game 1": "min-w-[4.5rem]",
	"Game 2": "min-w-[4.5rem]",
	"Game 3": "min-w-[4.5rem]",

	"Scratch":  "min-w-[5rem]",
	"Average":  "min-w-[5rem]",
	"Team HCP": "min-w-[5rem]",

	"Scratch Series": "min-w-[6rem]",
	"HCP Series":     "min-w-[6rem]",

	"Team":     "min-w-[8rem]",
	"Player":   "min-w-[10rem]",
	"Player 1": "min-w-[10rem]",
	"Player 2": "min-w-[10rem]",

	WildcardWidth: "min-w-[6rem]",
}

// Class returns the width class for label, or the wildcard class.
func (m WidthMap) Class(label string) string {
	if c, ok := m[label]; ok {
		return c
	}
	return m[WildcardWidth]
}

// firstClass returns the class of the first key present in the map, then the
// wildcard class.
func (m WidthMap) firstClass(keys ...string) string {
	for _, k := range keys {
		if c, ok := m[k]; ok {
			return c
		}
	}
	return m[WildcardWidth]
}
