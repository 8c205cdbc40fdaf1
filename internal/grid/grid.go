package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrUnknownDate   = errors.New("unknown date")
)

// State is the value held by a single player/date cell.
type State uint8

const (
	Unset State = iota
	Scheduled
	Excluded
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Scheduled:
		return "scheduled"
	case Excluded:
		return "excluded"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Marker returns the spreadsheet marker for the state: "S", "X" or "".
func (s State) Marker() string {
	switch s {
	case Scheduled:
		return "S"
	case Excluded:
		return "X"
	default:
		return ""
	}
}

// ParseMarker converts a spreadsheet cell into a State. Blank cells and
// "NaN" (as written by spreadsheet exports) are Unset.
func ParseMarker(v string) (State, error) {
	v = strings.TrimSpace(v)
	switch strings.ToUpper(v) {
	case "", "NAN":
		return Unset, nil
	case "S":
		return Scheduled, nil
	case "X":
		return Excluded, nil
	default:
		return Unset, fmt.Errorf("invalid cell marker %q (want S, X or blank)", v)
	}
}

// Cell addresses a grid cell by player and date index.
type Cell struct {
	Player int
	Date   int
}

// Grid is a player × date table. Rows and columns keep the order they were
// created with.
type Grid struct {
	players   []string
	dates     []string
	playerIdx map[string]int
	dateIdx   map[string]int
	cells     []State // row-major: player*len(dates)+date
}

// New creates a grid with every cell Unset.
func New(players, dates []string) (*Grid, error) {
	g := &Grid{
		players:   slices.Clone(players),
		dates:     slices.Clone(dates),
		playerIdx: make(map[string]int, len(players)),
		dateIdx:   make(map[string]int, len(dates)),
		cells:     make([]State, len(players)*len(dates)),
	}
	for i, p := range players {
		if p == "" {
			return nil, fmt.Errorf("player %d has an empty name", i+1)
		}
		if _, ok := g.playerIdx[p]; ok {
			return nil, fmt.Errorf("player %q appears more than once", p)
		}
		g.playerIdx[p] = i
	}
	for i, d := range dates {
		if d == "" {
			return nil, fmt.Errorf("date column %d has an empty label", i+1)
		}
		if _, ok := g.dateIdx[d]; ok {
			return nil, fmt.Errorf("date %q appears more than once", d)
		}
		g.dateIdx[d] = i
	}
	return g, nil
}

// Players returns the row keys in order.
func (g *Grid) Players() []string { return slices.Clone(g.players) }

// Dates returns the column keys in order.
func (g *Grid) Dates() []string { return slices.Clone(g.dates) }

func (g *Grid) NumPlayers() int { return len(g.players) }
func (g *Grid) NumDates() int   { return len(g.dates) }

func (g *Grid) Player(p int) string { return g.players[p] }
func (g *Grid) Date(d int) string   { return g.dates[d] }

func (g *Grid) PlayerIndex(name string) (int, error) {
	i, ok := g.playerIdx[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
	return i, nil
}

func (g *Grid) DateIndex(label string) (int, error) {
	i, ok := g.dateIdx[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDate, label)
	}
	return i, nil
}

// At returns the state at (p, d). Out-of-range indices panic.
func (g *Grid) At(p, d int) State {
	return g.cells[g.offset(p, d)]
}

// SetAt stores s at (p, d). Out-of-range indices panic.
func (g *Grid) SetAt(p, d int, s State) {
	g.cells[g.offset(p, d)] = s
}

func (g *Grid) offset(p, d int) int {
	if p < 0 || p >= len(g.players) || d < 0 || d >= len(g.dates) {
		panic(fmt.Sprintf("grid: cell (%d, %d) out of range %dx%d", p, d, len(g.players), len(g.dates)))
	}
	return p*len(g.dates) + d
}

// Get looks a cell up by player name and date label.
func (g *Grid) Get(player, date string) (State, error) {
	p, d, err := g.lookup(player, date)
	if err != nil {
		return Unset, err
	}
	return g.At(p, d), nil
}

// Set stores a cell by player name and date label.
func (g *Grid) Set(player, date string, s State) error {
	p, d, err := g.lookup(player, date)
	if err != nil {
		return err
	}
	g.SetAt(p, d, s)
	return nil
}

func (g *Grid) lookup(player, date string) (int, int, error) {
	p, err := g.PlayerIndex(player)
	if err != nil {
		return 0, 0, err
	}
	d, err := g.DateIndex(date)
	if err != nil {
		return 0, 0, err
	}
	return p, d, nil
}

// DateCount counts the cells in column d holding s.
func (g *Grid) DateCount(d int, s State) int {
	n := 0
	for p := range g.players {
		if g.At(p, d) == s {
			n++
		}
	}
	return n
}

// PlayerCount counts the cells in row p holding s.
func (g *Grid) PlayerCount(p int, s State) int {
	n := 0
	row := g.cells[p*len(g.dates) : (p+1)*len(g.dates)]
	for _, c := range row {
		if c == s {
			n++
		}
	}
	return n
}

// ScheduledOn returns the indices of players scheduled on date d, in row order.
func (g *Grid) ScheduledOn(d int) []int {
	var out []int
	for p := range g.players {
		if g.At(p, d) == Scheduled {
			out = append(out, p)
		}
	}
	return out
}

// Unset returns every unset cell in row-major order.
func (g *Grid) Unset() []Cell {
	var out []Cell
	for p := range g.players {
		for d := range g.dates {
			if g.At(p, d) == Unset {
				out = append(out, Cell{Player: p, Date: d})
			}
		}
	}
	return out
}

// Clone returns an independent copy. The key maps are shared since they are
// never mutated after New.
func (g *Grid) Clone() *Grid {
	return &Grid{
		players:   g.players,
		dates:     g.dates,
		playerIdx: g.playerIdx,
		dateIdx:   g.dateIdx,
		cells:     slices.Clone(g.cells),
	}
}

// Equal reports whether both grids have the same keys and cells.
func (g *Grid) Equal(o *Grid) bool {
	return slices.Equal(g.players, o.players) &&
		slices.Equal(g.dates, o.dates) &&
		slices.Equal(g.cells, o.cells)
}
