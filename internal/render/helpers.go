package render

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/pinfall/internal/models"
)

// EventDateLayout is the dd/mm/yyyy form used in meta.json dates.
const EventDateLayout = "02/01/2006"

const lastUpdatedLayout = "02/01/2006, 15:04"

// FormatNames maps meta.json format ids to display names.
var FormatNames = map[string]string{
	"doubles-reentry":   "Re-Entry Doubles",
	"doubles-standard":  "Standard Doubles",
	"fives-combination": "Combination 5's",
	"fives-diamond":     "Diamond 5's",
	"fives-standard":    "Standard 5's",
	"trios-reentry":     "Re-Entry Trios",
	"singles-standard":  "Singles",
	"scotch-doubles":    "Scotch Doubles",
}

// TypeNames maps meta.json type ids to display names.
var TypeNames = map[string]string{
	"handicap": "Handicap",
	"scratch":  "Scratch",
	"mixed":    "Mixed",
}

// CategoryNames maps meta.json category ids to display names.
var CategoryNames = map[string]string{
	"junior": "Junior",
	"adult":  "Adult",
	"senior": "Senior",
	"mixed":  "Open",
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters into a
// single hyphen.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// FormatDateRange renders event dates: one date as is, two as a range,
// more as a comma-separated list.
func FormatDateRange(dates []string) string {
	switch len(dates) {
	case 0:
		return ""
	case 1:
		return dates[0]
	case 2:
		return dates[0] + " – " + dates[1]
	default:
		return strings.Join(dates, ", ")
	}
}

// FormatLastUpdated renders t as dd/mm/yyyy, hh:mm in UTC.
func FormatLastUpdated(t time.Time) string {
	return t.UTC().Format(lastUpdatedLayout)
}

// DisplayName looks value up in names, returning "Unknown" when absent.
func DisplayName(value string, names map[string]string) string {
	if value == "" {
		return "Unknown"
	}
	if name, ok := names[value]; ok {
		return name
	}
	return "Unknown"
}

// ParseEventDate parses a dd/mm/yyyy date.
func ParseEventDate(s string) (time.Time, bool) {
	t, err := time.Parse(EventDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FirstDate returns the first parseable date of meta, or the zero time.
func FirstDate(meta models.Meta) time.Time {
	if len(meta.Dates) == 0 {
		return time.Time{}
	}
	t, _ := ParseEventDate(meta.Dates[0])
	return t
}

// Badges returns the tags shown for an event, in display order.
func Badges(meta models.Meta) []models.Badge {
	badges := []models.Badge{}
	if meta.Format != "" {
		badges = append(badges, models.Badge{Type: "format", Label: DisplayName(meta.Format, FormatNames)})
	}
	if meta.Type != "" {
		badges = append(badges, models.Badge{Type: "type", Label: DisplayName(meta.Type, TypeNames)})
	}
	if meta.Category != "" {
		badges = append(badges, models.Badge{Type: "category", Label: DisplayName(meta.Category, CategoryNames)})
	}
	if meta.Pattern != "" {
		badges = append(badges, models.Badge{Type: "pattern", Label: meta.Pattern})
	}
	if r := FormatDateRange(meta.Dates); r != "" {
		badges = append(badges, models.Badge{Type: "date", Label: r})
	}
	return badges
}
