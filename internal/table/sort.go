package table

import (
	"cmp"
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sorter orders rows by a single column.
type Sorter struct {
	hints Hints
}

// NewSorter returns a Sorter using hints to detect numeric headers. A nil
// hint list disables header-based detection.
func NewSorter(hints Hints) *Sorter {
	return &Sorter{hints: hints}
}

type indexedRow struct {
	row Row
	idx int
}

// Sort returns rows ordered by key in dir. The input slice is not modified.
//
// When the column is declared numeric or its key matches a hint, each pair is
// compared numerically if both cells parse; otherwise the pair falls back to a
// case-insensitive string comparison. Ties keep input order.
func (s *Sorter) Sort(rows []Row, key string, dir Direction, columns []Column) []Row {
	numeric := s.numericPreferred(key, columns)

	items := make([]indexedRow, len(rows))
	for i, r := range rows {
		items[i] = indexedRow{row: r, idx: i}
	}

	slices.SortFunc(items, func(a, b indexedRow) int {
		av := cell(a.row, key)
		bv := cell(b.row, key)

		if numeric {
			an, aok := ParseNumber(av)
			bn, bok := ParseNumber(bv)
			if aok && bok {
				if c := directed(cmp.Compare(an, bn), dir); c != 0 {
					return c
				}
				return cmp.Compare(a.idx, b.idx)
			}
		}

		if c := directed(strings.Compare(strings.ToLower(av), strings.ToLower(bv)), dir); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})

	out := make([]Row, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return out
}

func (s *Sorter) numericPreferred(key string, columns []Column) bool {
	for _, c := range columns {
		if c.Key == key && c.Type == TypeNumber {
			return true
		}
	}
	return s.hints.Match(key)
}

func directed(c int, dir Direction) int {
	if dir == Desc {
		return -c
	}
	return c
}

// cell looks key up as given and then trimmed. Absent cells read as "".
func cell(r Row, key string) string {
	if v, ok := r[key]; ok {
		return v
	}
	return r[strings.TrimSpace(key)]
}
