package score

import (
	"fmt"
	"time"

	"github.com/derekprior/golfsched/internal/grid"
)

// Weights combines the three sub-scores into a total. The sub-scores live on
// different scales and are not normalized.
type Weights struct {
	Balance  float64
	Coverage float64
	Seasonal float64
}

func DefaultWeights() Weights {
	return Weights{Balance: 0.4, Coverage: 0.3, Seasonal: 0.3}
}

func (w Weights) Combine(balance, coverage, seasonal float64) float64 {
	return w.Balance*balance + w.Coverage*coverage + w.Seasonal*seasonal
}

// Breakdown is a scored grid: each sub-score plus the weighted total.
type Breakdown struct {
	Balance  float64
	Coverage float64
	Seasonal float64
	Total    float64
}

func (b Breakdown) String() string {
	return fmt.Sprintf("total=%.4f balance=%.4f coverage=%.4f seasonal=%.0f",
		b.Total, b.Balance, b.Coverage, b.Seasonal)
}

// Options configures a Scorer.
type Options struct {
	Player  string // designated player for the seasonal score
	Months  []int  // months (1-12) that count toward the seasonal score
	Weights Weights
}

// DefaultOptions favors Aidan's matches from April through July.
func DefaultOptions() Options {
	return Options{
		Player:  "Aidan",
		Months:  []int{4, 5, 6, 7},
		Weights: DefaultWeights(),
	}
}

// Scorer computes the total score of grids over a fixed set of dates. It is
// safe for concurrent use.
type Scorer struct {
	player     string
	months     MonthSet
	weights    Weights
	labelMonth map[string]time.Month
}

// New parses every date label once so scoring never has to.
func New(dates []string, opts Options) (*Scorer, error) {
	labelMonth := make(map[string]time.Month, len(dates))
	for _, d := range dates {
		m, err := ParseMonth(d)
		if err != nil {
			return nil, err
		}
		labelMonth[d] = m
	}
	return &Scorer{
		player:     opts.Player,
		months:     NewMonthSet(opts.Months...),
		weights:    opts.Weights,
		labelMonth: labelMonth,
	}, nil
}

func (s *Scorer) Player() string { return s.player }

// Score returns the breakdown for g. It fails if the designated player is
// not a row of g.
func (s *Scorer) Score(g *grid.Grid) (Breakdown, error) {
	seasonal, err := Seasonal(g, s.player, s.months, s.labelMonth)
	if err != nil {
		return Breakdown{}, err
	}
	b := Breakdown{
		Balance:  Balance(g),
		Coverage: Coverage(g),
		Seasonal: seasonal,
	}
	b.Total = s.weights.Combine(b.Balance, b.Coverage, b.Seasonal)
	return b, nil
}
