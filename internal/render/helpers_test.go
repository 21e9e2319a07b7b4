package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/starford/pinfall/internal/models"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Results":            "results",
		"Team Results 2025!": "team-results-2025",
		"  --Scratch--  ":    "scratch",
		"":                   "",
		"tab-1":              "tab-1",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestFormatDateRange(t *testing.T) {
	assert.Equal(t, "", FormatDateRange(nil))
	assert.Equal(t, "01/03/2025", FormatDateRange([]string{"01/03/2025"}))
	assert.Equal(t, "01/03/2025 – 02/03/2025", FormatDateRange([]string{"01/03/2025", "02/03/2025"}))
	assert.Equal(t, "a, b, c", FormatDateRange([]string{"a", "b", "c"}))
}

func TestDisplayNameAndBadges(t *testing.T) {
	assert.Equal(t, "Diamond 5's", DisplayName("fives-diamond", FormatNames))
	assert.Equal(t, "Unknown", DisplayName("nope", FormatNames))
	assert.Equal(t, "Unknown", DisplayName("", TypeNames))

	badges := Badges(models.Meta{
		Format:   "singles-standard",
		Type:     "scratch",
		Category: "mixed",
		Pattern:  "Shark 44",
		Dates:    []string{"05/04/2025"},
	})
	assert.Equal(t, []models.Badge{
		{Type: "format", Label: "Singles"},
		{Type: "type", Label: "Scratch"},
		{Type: "category", Label: "Open"},
		{Type: "pattern", Label: "Shark 44"},
		{Type: "date", Label: "05/04/2025"},
	}, badges)
	assert.Empty(t, Badges(models.Meta{}))
}

func TestFirstDate(t *testing.T) {
	assert.Equal(t, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), FirstDate(models.Meta{Dates: []string{"05/04/2025"}}))
	assert.True(t, FirstDate(models.Meta{}).IsZero())
	assert.True(t, FirstDate(models.Meta{Dates: []string{"soon"}}).IsZero())
}

func TestSitemapAndRobots(t *testing.T) {
	mod := time.Date(2025, 3, 2, 18, 5, 0, 0, time.UTC)
	out := string(Sitemap([]SitemapURL{
		{Loc: "https://x.test/", LastMod: mod},
		{Loc: "https://x.test/events/a&b/2025/"},
	}))
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, "<lastmod>2025-03-02T18:05:00.000Z</lastmod>")
	assert.Contains(t, out, "<loc>https://x.test/events/a&amp;b/2025/</loc>")

	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://x.test/sitemap.xml\n", string(Robots("https://x.test/")))
}
