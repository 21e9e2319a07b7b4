package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/render"
	"github.com/starford/pinfall/internal/table"
)

const podiumSize = 3

// Score columns in order of preference for the podium.
var podiumScoreKeys = []string{"HCP Series", "Scratch Series", "Scratch", "Score"}

// OGData collects what the event preview image shows.
func OGData(ref models.EventRef, meta models.Meta, tabs []models.Tab, lf models.Lockfile) models.OGData {
	name := meta.Name
	if name == "" {
		name = "Tournament Results"
	}
	d := models.OGData{
		Name:        name,
		Description: meta.Description,
		Badges:      render.Badges(meta),
		Podium:      Podium(tabs),
		Slug:        ref.Slug,
		Year:        ref.Year,
	}
	if t := lf.LastChange(); !t.IsZero() {
		d.LastUpdated = &t
	}
	return d
}

// Podium returns the top finishers of the results.csv tab.
func Podium(tabs []models.Tab) []models.PodiumEntry {
	podium := []models.PodiumEntry{}
	var results *models.Tab
	for i := range tabs {
		if tabs[i].File == "results.csv" {
			results = &tabs[i]
			break
		}
	}
	if results == nil {
		return podium
	}

	for _, row := range results.Rows[:min(podiumSize, len(results.Rows))] {
		place, ok := leadingInt(row["Place"])
		if !ok || place == 0 {
			place = len(podium) + 1
		}
		players := podiumPlayers(row)
		if players == "" {
			players = row["Team"]
		}
		if players == "" {
			players = "Unknown"
		}
		podium = append(podium, models.PodiumEntry{
			Place:   place,
			Players: players,
			Score:   podiumScore(row),
		})
	}
	return podium
}

func podiumPlayers(row table.Row) string {
	var keys []string
	for k := range row {
		if strings.HasPrefix(k, "Player") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var names []string
	for _, k := range keys {
		if v := row[k]; v != "" {
			names = append(names, v)
		}
	}
	return strings.Join(names, " & ")
}

func podiumScore(row table.Row) string {
	for _, k := range podiumScoreKeys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

// leadingInt parses the integer prefix of s, so "1st" is 1.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
