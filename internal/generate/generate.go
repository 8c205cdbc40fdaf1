package generate

import (
	"math/rand"

	"github.com/derekprior/golfsched/internal/grid"
)

// Limits caps how many players share a date and how many matches a player
// takes before further open cells in their row are excluded.
type Limits struct {
	DateCapacity   int // players per date before the rest of the column is excluded
	PlayerMatchCap int // a player is excluded once their match count exceeds this
}

// DefaultLimits returns the league defaults: foursomes, and no more than ten
// matches per player.
func DefaultLimits() Limits {
	return Limits{DateCapacity: 4, PlayerMatchCap: 9}
}

// Order collects every unset cell of g in row-major order and shuffles it.
func Order(g *grid.Grid, rng *rand.Rand) []grid.Cell {
	cells := g.Unset()
	rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})
	return cells
}

// Fill resolves every unset cell of a copy of original, visiting cells in
// the given order. Each decision reads the partially filled copy, so the
// order changes the outcome. The original is not modified.
//
// Once a date reaches capacity, the next visit to any of its cells excludes
// every remaining open cell in that column at once. Cells excluded this way
// are skipped when their own turn comes.
func Fill(original *grid.Grid, order []grid.Cell, lim Limits) *grid.Grid {
	g := original.Clone()

	for _, c := range order {
		scheduled := g.DateCount(c.Date, grid.Scheduled)

		if scheduled == 0 {
			// First player on a date is always scheduled.
			g.SetAt(c.Player, c.Date, grid.Scheduled)
			continue
		}

		if scheduled >= lim.DateCapacity {
			for p := 0; p < g.NumPlayers(); p++ {
				if g.At(p, c.Date) == grid.Unset {
					g.SetAt(p, c.Date, grid.Excluded)
				}
			}
			continue
		}

		if g.At(c.Player, c.Date) != grid.Unset {
			continue
		}
		if g.PlayerCount(c.Player, grid.Scheduled) > lim.PlayerMatchCap {
			g.SetAt(c.Player, c.Date, grid.Excluded)
		} else {
			g.SetAt(c.Player, c.Date, grid.Scheduled)
		}
	}

	return g
}

// Candidate produces one random fill of original.
func Candidate(original *grid.Grid, rng *rand.Rand, lim Limits) *grid.Grid {
	return Fill(original, Order(original, rng), lim)
}
