package score

import (
	"errors"
	"math"
	"testing"

	"github.com/derekprior/golfsched/internal/grid"
)

func TestScorerTotal(t *testing.T) {
	players := []string{"Aidan", "B", "C"}
	s, err := New(dates, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	grids := []*grid.Grid{
		build(t, players, dates, "SSX", "SXS", "XSS"),
		build(t, players, dates, "SSS", "SXX", "XXX"),
	}
	for i, g := range grids {
		b, err := s.Score(g)
		if err != nil {
			t.Fatalf("grid %d: Score() error: %v", i, err)
		}
		want := 0.4*b.Balance + 0.3*b.Coverage + 0.3*b.Seasonal
		if math.Abs(b.Total-want) > tolerance {
			t.Errorf("grid %d: Total = %v, want %v", i, b.Total, want)
		}
		if b.Balance != Balance(g) || b.Coverage != Coverage(g) {
			t.Errorf("grid %d: breakdown %v disagrees with sub-scorers", i, b)
		}
	}

	t.Run("known values", func(t *testing.T) {
		// counts 2,2,2 -> balance 3; pairs AB, AC, BC once each -> coverage 2;
		// Aidan plays 01-Apr and 15-May -> seasonal 2.
		b, _ := s.Score(grids[0])
		if b.Balance != 3 || b.Coverage != 2 || b.Seasonal != 2 {
			t.Fatalf("breakdown = %v, want balance 3 coverage 2 seasonal 2", b)
		}
		if math.Abs(b.Total-(1.2+0.6+0.6)) > tolerance {
			t.Errorf("Total = %v, want 2.4", b.Total)
		}
	})
}

func TestScorerMissingPlayer(t *testing.T) {
	s, err := New([]string{"01-Apr", "01-Aug"}, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	g := build(t, abc, []string{"01-Apr", "01-Aug"}, "SS", "SS", "SS")

	_, err = s.Score(g)
	if !errors.Is(err, grid.ErrUnknownPlayer) {
		t.Errorf("Score() error = %v, want ErrUnknownPlayer", err)
	}
}

func TestScorerRejectsBadDates(t *testing.T) {
	if _, err := New([]string{"01-Apr", "Week 3"}, DefaultOptions()); err == nil {
		t.Error("expected error for unparseable date label")
	}
}

func TestScorerUnknownDate(t *testing.T) {
	s, err := New([]string{"01-Apr"}, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	g := build(t, []string{"Aidan"}, []string{"01-Apr", "02-Apr"}, "SS")
	if _, err := s.Score(g); !errors.Is(err, grid.ErrUnknownDate) {
		t.Errorf("Score() error = %v, want ErrUnknownDate", err)
	}
}

func TestCustomWeights(t *testing.T) {
	opts := DefaultOptions()
	opts.Weights = Weights{Balance: 1}
	s, err := New(dates, opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	g := build(t, []string{"Aidan", "B"}, dates, "SSS", "XXX")
	b, err := s.Score(g)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if b.Total != b.Balance {
		t.Errorf("Total = %v, want balance %v", b.Total, b.Balance)
	}
}
