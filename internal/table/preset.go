package table

import "sync"

// Layout slots that expand to a dynamic run of numbered columns.
const (
	SlotPlayers = "@players"
	SlotGames   = "@games"
)

// Default limits for numbered columns.
const (
	DefaultMaxPlayers = 5
	DefaultMaxGames   = 9
)

// DefaultLayout is the column order shared by the built-in presets.
var DefaultLayout = []string{
	"Place", "Team", SlotPlayers, "HCP", SlotGames,
	"Scratch", "Scratch Series", "HCP Series", "Squad",
}

// Preset is a named column layout for a recognized result sheet.
type Preset struct {
	Name string
	// PlayersKey is the base name of player columns ("Player", "Player 1"...).
	PlayersKey string
	// GamesKey is the base name of game columns ("Game 1"...).
	GamesKey    string
	BaseColumns []ColumnSpec
	// Layout orders base column keys and slots. Keys not listed are dropped.
	Layout []string
}

// FormatOptions bounds the numbered columns a preset looks for.
type FormatOptions struct {
	MaxPlayers int `json:"maxPlayers,omitempty"`
	MaxGames   int `json:"maxGames,omitempty"`
}

func (o *FormatOptions) limits() (players, games int) {
	players, games = DefaultMaxPlayers, DefaultMaxGames
	if o == nil {
		return players, games
	}
	if o.MaxPlayers > 0 {
		players = o.MaxPlayers
	}
	if o.MaxGames > 0 {
		games = o.MaxGames
	}
	return players, games
}

// Registry maps format names to presets.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewRegistry returns a registry holding presets.
func NewRegistry(presets ...Preset) *Registry {
	r := &Registry{presets: make(map[string]Preset, len(presets))}
	for _, p := range presets {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a preset. Missing keys and layout get defaults.
func (r *Registry) Register(p Preset) {
	if p.PlayersKey == "" {
		p.PlayersKey = "Player"
	}
	if p.GamesKey == "" {
		p.GamesKey = "Game"
	}
	if len(p.Layout) == 0 {
		p.Layout = DefaultLayout
	}
	r.mu.Lock()
	r.presets[p.Name] = p
	r.mu.Unlock()
}

// Lookup returns the preset registered under name.
func (r *Registry) Lookup(name string) (Preset, bool) {
	if r == nil || name == "" {
		return Preset{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[name]
	return p, ok
}

func sortable(v bool) *bool { return &v }

// DefaultRegistry returns the "results" (team) and "singles" presets.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Preset{
			Name: "results",
			BaseColumns: []ColumnSpec{
				{Key: "Place", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Team", Type: TypeString, Sortable: sortable(false)},
				{Key: "HCP", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Scratch", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Scratch Series", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "HCP Series", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Squad", Type: TypeString, Sortable: sortable(true)},
			},
		},
		Preset{
			Name: "singles",
			BaseColumns: []ColumnSpec{
				{Key: "Place", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Player", Type: TypeString, Sortable: sortable(false)},
				{Key: "HCP", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Scratch", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Scratch Series", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "HCP Series", Type: TypeNumber, Sortable: sortable(true)},
				{Key: "Squad", Type: TypeString, Sortable: sortable(true)},
			},
		},
	)
}
