package checker

import (
	"fmt"
	"slices"

	"github.com/derekprior/golfsched/internal/generate"
	"github.com/derekprior/golfsched/internal/grid"
)

// Violation is a problem found in a finished schedule.
type Violation struct {
	Row     int    // spreadsheet row of the player, 0 when the problem is a whole date
	Type    string // "error" or "warning"
	Message string
}

// Options controls what Check compares against.
type Options struct {
	Limits generate.Limits
	// Original, when set, is the pre-filled grid the schedule was built
	// from. Every cell it fixed must be unchanged.
	Original *grid.Grid
}

// Check inspects a completed schedule. Hard problems (open cells, dates over
// capacity, changed pre-filled cells) are errors; the rest are warnings.
func Check(g *grid.Grid, opts Options) ([]Violation, error) {
	if opts.Limits == (generate.Limits{}) {
		opts.Limits = generate.DefaultLimits()
	}

	var violations []Violation
	if opts.Original != nil {
		changed, err := checkPrefilled(g, opts.Original)
		if err != nil {
			return nil, err
		}
		violations = append(violations, changed...)
	}
	violations = append(violations, checkOpenCells(g)...)
	violations = append(violations, checkDateCapacity(g, opts.Limits)...)
	violations = append(violations, checkEmptyDates(g)...)
	violations = append(violations, checkPlayerCap(g, opts.Limits)...)
	return violations, nil
}

// Errors counts the violations of type "error".
func Errors(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if v.Type == "error" {
			n++
		}
	}
	return n
}

func row(p int) int { return p + 2 }

func checkPrefilled(g, original *grid.Grid) ([]Violation, error) {
	if !slices.Equal(g.Players(), original.Players()) || !slices.Equal(g.Dates(), original.Dates()) {
		return nil, fmt.Errorf("schedule and original have different players or dates")
	}

	var violations []Violation
	for p := 0; p < g.NumPlayers(); p++ {
		for d := 0; d < g.NumDates(); d++ {
			want := original.At(p, d)
			if want == grid.Unset || g.At(p, d) == want {
				continue
			}
			violations = append(violations, Violation{
				Row:     row(p),
				Type:    "error",
				Message: fmt.Sprintf("%s on %s was fixed as %s but is now %s", g.Player(p), g.Date(d), want, g.At(p, d)),
			})
		}
	}
	return violations, nil
}

func checkOpenCells(g *grid.Grid) []Violation {
	var violations []Violation
	for p := 0; p < g.NumPlayers(); p++ {
		if n := g.PlayerCount(p, grid.Unset); n > 0 {
			violations = append(violations, Violation{
				Row:     row(p),
				Type:    "error",
				Message: fmt.Sprintf("%s has %d undecided dates", g.Player(p), n),
			})
		}
	}
	return violations
}

func checkDateCapacity(g *grid.Grid, lim generate.Limits) []Violation {
	var violations []Violation
	for d := 0; d < g.NumDates(); d++ {
		if n := g.DateCount(d, grid.Scheduled); n > lim.DateCapacity {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%d players scheduled on %s (max %d)", n, g.Date(d), lim.DateCapacity),
			})
		}
	}
	return violations
}

func checkEmptyDates(g *grid.Grid) []Violation {
	var violations []Violation
	for d := 0; d < g.NumDates(); d++ {
		if g.DateCount(d, grid.Scheduled) == 0 {
			violations = append(violations, Violation{
				Type:    "warning",
				Message: fmt.Sprintf("nobody is scheduled on %s", g.Date(d)),
			})
		}
	}
	return violations
}

// The generator tests the cap before scheduling, so a player can finish one
// match over it.
func checkPlayerCap(g *grid.Grid, lim generate.Limits) []Violation {
	var violations []Violation
	for p := 0; p < g.NumPlayers(); p++ {
		if n := g.PlayerCount(p, grid.Scheduled); n > lim.PlayerMatchCap {
			violations = append(violations, Violation{
				Row:     row(p),
				Type:    "warning",
				Message: fmt.Sprintf("%s plays %d matches (cap %d)", g.Player(p), n, lim.PlayerMatchCap),
			})
		}
	}
	return violations
}
