package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnKeys(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Key
	}
	return out
}

func TestBuild_ResultsPresetOrder(t *testing.T) {
	b := NewBuilder(nil, nil, nil)
	cfg := b.Build(TabInput{
		Headers:        []string{"Place", "Team", "HCP", "Player 1", "Player 2", "Scratch"},
		File:           FileConfig{Format: "results"},
		DefaultSortKey: "Place",
	})

	assert.Equal(t, []string{"Place", "Team", "Player 1", "Player 2", "HCP", "Scratch"}, columnKeys(cfg.Columns))
	assert.Equal(t, "Place", cfg.DefaultSortKey)

	team := cfg.Columns[1]
	assert.False(t, team.Sortable)
	assert.Equal(t, "min-w-[8rem]", team.Width)
	assert.Equal(t, TypeString, cfg.Columns[2].Type)
	assert.Equal(t, TypeNumber, cfg.Columns[4].Type)
}

func TestBuild_PresetGamesAndSeries(t *testing.T) {
	b := NewBuilder(nil, nil, nil)
	headers := []string{"Squad", "HCP Series", "Game 2", "Game 1", "Place", "Player", "Scratch Series", "Game 12"}
	cfg := b.Build(TabInput{Headers: headers, File: FileConfig{Format: "singles"}})

	assert.Equal(t,
		[]string{"Place", "Player", "Game 1", "Game 2", "Scratch Series", "HCP Series", "Squad"},
		columnKeys(cfg.Columns))
	// Game 2 has its own width; games without one borrow Game 1's.
	assert.Equal(t, "min-w-[4.5rem]", cfg.Columns[3].Width)
}

func TestBuild_FormatOptionsLimitNumberedColumns(t *testing.T) {
	b := NewBuilder(nil, nil, nil)
	headers := []string{"Place", "Team", "Player 1", "Player 2", "Player 3", "Game 1", "Game 4"}
	cfg := b.Build(TabInput{
		Headers: headers,
		File:    FileConfig{Format: "results", FormatOptions: &FormatOptions{MaxPlayers: 2, MaxGames: 3}},
	})
	assert.Equal(t, []string{"Place", "Team", "Player 1", "Player 2", "Game 1"}, columnKeys(cfg.Columns))

	wide := b.Build(TabInput{Headers: []string{"Game 10", "Game 9"}, File: FileConfig{Format: "results"}})
	assert.Equal(t, []string{"Game 9"}, columnKeys(wide.Columns))
}

func TestBuild_ExplicitColumnsWin(t *testing.T) {
	b := NewBuilder(nil, nil, nil)
	no := false
	cfg := b.Build(TabInput{
		Headers: []string{"Place", "Team", "Scratch"},
		File: FileConfig{
			Format: "results",
			Columns: []ColumnSpec{
				{Key: "Bowler", Label: "Name", Sortable: &no},
				{Key: "Average"},
			},
		},
		DefaultSortKey: "Place",
	})

	require.Len(t, cfg.Columns, 2)
	assert.Equal(t, Column{Key: "Bowler", Label: "Name", Type: TypeString, Sortable: false, Width: "min-w-[6rem]"}, cfg.Columns[0])
	assert.Equal(t, Column{Key: "Average", Label: "Average", Type: TypeNumber, Sortable: true, Width: "min-w-[5rem]"}, cfg.Columns[1])
	// Place is not a declared column, so the first sortable column is used.
	assert.Equal(t, "Average", cfg.DefaultSortKey)
}

func TestBuild_EmptyExplicitColumns(t *testing.T) {
	var fc FileConfig
	require.NoError(t, json.Unmarshal([]byte(`{"format":"results","columns":[]}`), &fc))

	cfg := NewBuilder(nil, nil, nil).Build(TabInput{Headers: []string{"Place"}, File: fc, DefaultSortKey: "Place"})
	assert.Empty(t, cfg.Columns)
	assert.Equal(t, "", cfg.DefaultSortKey)
}

func TestBuild_HeaderFallback(t *testing.T) {
	b := NewBuilder(nil, nil, nil)
	rows := []Row{{"Name": "A", "Pace": "+12"}}
	cfg := b.Build(TabInput{
		Headers:        []string{"Name", "Pace"},
		Rows:           rows,
		File:           FileConfig{Format: "unknown"},
		DefaultSortKey: "Missing",
	})

	assert.Equal(t, []string{"Name", "Pace"}, columnKeys(cfg.Columns))
	assert.Equal(t, TypeString, cfg.Columns[0].Type)
	assert.Equal(t, TypeNumber, cfg.Columns[1].Type)
	assert.Equal(t, "min-w-[4rem]", cfg.Columns[1].Width)
	assert.True(t, cfg.Columns[0].Sortable)
	assert.Equal(t, "Name", cfg.DefaultSortKey)
	assert.Equal(t, rows, cfg.Rows)
}

func TestResolveSortKey_RequestedMustBeSortable(t *testing.T) {
	cols := []Column{
		{Key: "Team", Sortable: false},
		{Key: "Scratch", Sortable: true},
	}
	assert.Equal(t, "Scratch", ResolveSortKey(cols, "Team"))
	assert.Equal(t, "Scratch", ResolveSortKey(cols, "Scratch"))
	assert.Equal(t, "", ResolveSortKey([]Column{{Key: "Team"}}, "Team"))
}

func TestRegistry_CustomPreset(t *testing.T) {
	reg := DefaultRegistry()
	reg.Register(Preset{
		Name:        "baker",
		BaseColumns: []ColumnSpec{{Key: "Place"}, {Key: "Total", Type: TypeNumber}},
		Layout:      []string{"Place", SlotGames, "Total"},
	})

	b := NewBuilder(nil, nil, reg)
	cfg := b.Build(TabInput{
		Headers: []string{"Total", "Game 1", "Place", "Team"},
		File:    FileConfig{Format: "baker"},
	})
	assert.Equal(t, []string{"Place", "Game 1", "Total"}, columnKeys(cfg.Columns))

	_, ok := reg.Lookup("results")
	assert.True(t, ok)
	_, ok = reg.Lookup("")
	assert.False(t, ok)
}

func TestInference(t *testing.T) {
	assert.Equal(t, TypeNumber, DefaultHints.InferType("Team HCP", ""))
	assert.Equal(t, TypeString, DefaultHints.InferType("Team", ""))
	assert.Equal(t, TypeString, DefaultHints.InferType("Scratch", TypeString))
	assert.Equal(t, TypeNumber, Hints(nil).InferType("x", TypeNumber))

	assert.True(t, IsNumericValue("1,234", "Team", DefaultHints))
	assert.True(t, IsNumericValue("n/a", "Game 1", DefaultHints))
	assert.False(t, IsNumericValue("", "Team", DefaultHints))
	assert.False(t, IsNumericValue("Inf", "Team", DefaultHints))

	assert.Equal(t, "min-w-[6rem]", DefaultWidths.Class("Unknown"))
	assert.Equal(t, "", WidthMap{}.Class("Place"))

	n, ok := ParseNumber(" 1,234.5 ")
	assert.True(t, ok)
	assert.Equal(t, 1234.5, n)
}
