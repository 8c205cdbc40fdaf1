package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for optimizer runs on its own registry, so
// a run can be exported as a textfile without global state.
type Recorder struct {
	Registry *prometheus.Registry

	Candidates   prometheus.Counter
	Improvements prometheus.Counter
	BestScore    prometheus.Gauge
	BestSubscore *prometheus.GaugeVec
	RunDuration  prometheus.Histogram
}

// NewRecorder registers a fresh set of collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		Candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "golfsched_candidates_total",
			Help: "Candidate schedules generated and scored.",
		}),
		Improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "golfsched_improvements_total",
			Help: "Times a candidate replaced the best schedule.",
		}),
		BestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "golfsched_best_score",
			Help: "Total score of the best schedule found.",
		}),
		BestSubscore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "golfsched_best_subscore",
			Help: "Sub-scores of the best schedule found.",
		}, []string{"component"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "golfsched_run_duration_seconds",
			Help:    "Wall time of optimizer runs.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
	r.Registry.MustRegister(r.Candidates, r.Improvements, r.BestScore, r.BestSubscore, r.RunDuration)
	return r
}

// ObserveBest records the sub-scores and total of a new best schedule.
func (r *Recorder) ObserveBest(total, balance, coverage, seasonal float64) {
	r.BestScore.Set(total)
	r.BestSubscore.WithLabelValues("balance").Set(balance)
	r.BestSubscore.WithLabelValues("coverage").Set(coverage)
	r.BestSubscore.WithLabelValues("seasonal").Set(seasonal)
}

func (r *Recorder) ObserveRun(d time.Duration) {
	r.RunDuration.Observe(d.Seconds())
}

// WriteFile writes the registry in the text exposition format, for pickup by
// a node_exporter textfile collector.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
