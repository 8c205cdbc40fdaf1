package score

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/derekprior/golfsched/internal/grid"
)

// Balance rewards even match counts: the number of dates minus the
// population standard deviation of per-player scheduled counts.
func Balance(g *grid.Grid) float64 {
	// The mean of an empty slice is NaN.
	if g.NumPlayers() == 0 {
		return float64(g.NumDates())
	}
	counts := make([]float64, g.NumPlayers())
	for p := range counts {
		counts[p] = float64(g.PlayerCount(p, grid.Scheduled))
	}
	return float64(g.NumDates()) - stat.PopStdDev(counts, nil)
}

// Coverage measures how often players share a date. Every co-scheduled pair
// on a date counts once in each direction, and the total is divided by the
// number of possible unordered pairs in the field.
func Coverage(g *grid.Grid) float64 {
	n := g.NumPlayers()
	possible := float64(n*(n-1)) / 2
	if possible == 0 {
		return 0
	}

	// playedWith[a][b] is symmetric.
	playedWith := make([][]int, n)
	for i := range playedWith {
		playedWith[i] = make([]int, n)
	}
	for d := 0; d < g.NumDates(); d++ {
		on := g.ScheduledOn(d)
		for i := 0; i < len(on); i++ {
			for j := i + 1; j < len(on); j++ {
				playedWith[on[i]][on[j]]++
				playedWith[on[j]][on[i]]++
			}
		}
	}

	total := 0
	for a := range n {
		for b := range n {
			if a != b {
				total += playedWith[a][b]
			}
		}
	}
	return float64(total) / possible
}

// ParseMonth extracts the month from a day-month label such as "01-Apr" or
// "7-jul".
func ParseMonth(label string) (time.Month, error) {
	t, err := time.Parse("2-Jan", strings.TrimSpace(label))
	if err != nil {
		return 0, fmt.Errorf("parsing date %q: %w", label, err)
	}
	return t.Month(), nil
}

// MonthSet is a set of calendar months.
type MonthSet map[time.Month]bool

// NewMonthSet builds a set from month numbers.
func NewMonthSet(months ...int) MonthSet {
	s := make(MonthSet, len(months))
	for _, m := range months {
		s[time.Month(m)] = true
	}
	return s
}

// Seasonal counts how many of player's scheduled dates fall in months.
// labelMonth maps each date label of g to its month.
func Seasonal(g *grid.Grid, player string, months MonthSet, labelMonth map[string]time.Month) (float64, error) {
	p, err := g.PlayerIndex(player)
	if err != nil {
		return 0, fmt.Errorf("seasonal score: %w", err)
	}

	n := 0
	for d := 0; d < g.NumDates(); d++ {
		if g.At(p, d) != grid.Scheduled {
			continue
		}
		m, ok := labelMonth[g.Date(d)]
		if !ok {
			return 0, fmt.Errorf("seasonal score: %w: %q", grid.ErrUnknownDate, g.Date(d))
		}
		if months[m] {
			n++
		}
	}
	return float64(n), nil
}
