package optimize

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/golfsched/internal/generate"
	"github.com/derekprior/golfsched/internal/grid"
	"github.com/derekprior/golfsched/internal/metrics"
	"github.com/derekprior/golfsched/internal/score"
)

var (
	ErrNoIterations = errors.New("iterations must be at least 1")
	ErrAlreadyRun   = errors.New("optimizer has already run")
	// ErrNoBest means no candidate had a comparable score, e.g. every
	// total was NaN.
	ErrNoBest = errors.New("no candidate produced a comparable score")
)

// State is the lifecycle of an Optimizer.
type State int32

const (
	Idle State = iota
	Running
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options tunes a run. Zero values fall back to the defaults noted below.
type Options struct {
	Iterations    int             // rounds to run (required, >= 1)
	Limits        generate.Limits // zero value means generate.DefaultLimits()
	Seed          int64           // 0 picks a seed from the clock
	Workers       int             // <= 1 runs sequentially
	ProgressEvery int             // log every n rounds; default 100
	Logger        logrus.FieldLogger
	Metrics       *metrics.Recorder
}

// Result is the best schedule found by a run.
type Result struct {
	Best       *grid.Grid
	Score      score.Breakdown
	Iterations int
	// Improvements counts how often the best was replaced, walking rounds
	// in order. The first scored candidate counts as one.
	Improvements int
	Seed         int64
	Elapsed      time.Duration
}

// Optimizer repeatedly fills the unset cells of an original grid at random
// and keeps the highest scoring fill. It never searches locally around a
// candidate: every round starts again from the original.
type Optimizer struct {
	original *grid.Grid
	scorer   *score.Scorer
	opts     Options
	log      logrus.FieldLogger
	state    atomic.Int32
}

func New(original *grid.Grid, scorer *score.Scorer, opts Options) *Optimizer {
	if opts.Limits == (generate.Limits{}) {
		opts.Limits = generate.DefaultLimits()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 100
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Optimizer{original: original, scorer: scorer, opts: opts, log: log}
}

func (o *Optimizer) State() State { return State(o.state.Load()) }

// best is a worker's running best. A nil grid means nothing scored yet.
// accepted holds the total of every candidate that replaced it, in order.
type best struct {
	grid     *grid.Grid
	score    score.Breakdown
	accepted []float64
}

func newBest() best {
	return best{score: score.Breakdown{Total: math.Inf(-1)}}
}

// offer keeps b only when its total is strictly higher, so ties go to the
// earlier candidate.
func (b *best) offer(g *grid.Grid, s score.Breakdown) bool {
	if s.Total > b.score.Total {
		b.grid = g.Clone()
		b.score = s
		b.accepted = append(b.accepted, s.Total)
		return true
	}
	return false
}

// Run executes every round and returns the best schedule. It can be called
// once per Optimizer.
func (o *Optimizer) Run() (*Result, error) {
	if o.opts.Iterations < 1 {
		return nil, ErrNoIterations
	}
	if !o.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return nil, ErrAlreadyRun
	}
	defer o.state.Store(int32(Done))

	seed := o.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := min(o.opts.Workers, o.opts.Iterations)

	log := o.log.WithFields(logrus.Fields{
		"iterations": o.opts.Iterations,
		"seed":       seed,
		"workers":    workers,
		"players":    o.original.NumPlayers(),
		"dates":      o.original.NumDates(),
		"open_cells": len(o.original.Unset()),
	})
	log.Info("Starting optimization")
	start := time.Now()

	var (
		winner best
		err    error
	)
	if workers == 1 {
		winner, err = o.search(log, rand.New(rand.NewSource(seed)), 0, o.opts.Iterations)
	} else {
		winner, err = o.searchParallel(log, seed, workers)
	}
	if err != nil {
		return nil, err
	}
	if winner.grid == nil {
		return nil, ErrNoBest
	}

	res := &Result{
		Best:         winner.grid,
		Score:        winner.score,
		Iterations:   o.opts.Iterations,
		Improvements: len(winner.accepted),
		Seed:         seed,
		Elapsed:      time.Since(start),
	}
	if m := o.opts.Metrics; m != nil {
		m.Improvements.Add(float64(res.Improvements))
		m.ObserveBest(res.Score.Total, res.Score.Balance, res.Score.Coverage, res.Score.Seasonal)
		m.ObserveRun(res.Elapsed)
	}
	log.WithFields(logrus.Fields{
		"best_score": res.Score.Total,
		"elapsed":    res.Elapsed.Round(time.Millisecond),
	}).Info("Optimization complete")
	return res, nil
}

// search runs count rounds numbered from first, using rng for every shuffle.
func (o *Optimizer) search(log logrus.FieldLogger, rng *rand.Rand, first, count int) (best, error) {
	b := newBest()
	for i := first; i < first+count; i++ {
		if (i+1)%o.opts.ProgressEvery == 0 {
			log.Infof("Iteration: %d/%d", i+1, o.opts.Iterations)
		}

		cand := generate.Candidate(o.original, rng, o.opts.Limits)
		s, err := o.scorer.Score(cand)
		if err != nil {
			return best{}, fmt.Errorf("scoring iteration %d: %w", i+1, err)
		}
		if m := o.opts.Metrics; m != nil {
			m.Candidates.Inc()
		}

		if b.offer(cand, s) {
			log.WithField("iteration", i+1).Debugf("New best: %s", s)
		}
	}
	return b, nil
}

// searchParallel splits the rounds into contiguous chunks, one per worker.
// Each worker has its own generator seeded with seed+worker, and the local
// bests are reduced in worker order, so a fixed seed gives a fixed result.
//
// Any round that beats the overall best so far also beat its own worker's
// best, so replaying each worker's accepted totals in chunk order counts
// replacements as a single pass over the rounds would.
func (o *Optimizer) searchParallel(log logrus.FieldLogger, seed int64, workers int) (best, error) {
	results := make([]best, workers)
	per, extra := o.opts.Iterations/workers, o.opts.Iterations%workers

	var g errgroup.Group
	first := 0
	for w := range workers {
		count := per
		if w < extra {
			count++
		}
		from := first
		first += count
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(w)))
			b, err := o.search(log.WithField("worker", w), rng, from, count)
			if err != nil {
				return err
			}
			results[w] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return best{}, err
	}

	winner := newBest()
	top := math.Inf(-1)
	for _, r := range results {
		for _, total := range r.accepted {
			if total > top {
				top = total
				winner.accepted = append(winner.accepted, total)
			}
		}
		if r.score.Total > winner.score.Total {
			winner.grid = r.grid
			winner.score = r.score
		}
	}
	return winner, nil
}
