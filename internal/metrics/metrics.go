// Package metrics exposes prometheus collectors for the encoding pipeline and
// the generation loop. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "textgen"

const (
	// --- Subsystems ---
	VocabSubsystem      = "vocab"
	GenerationSubsystem = "generation"
	PreprocessSubsystem = "preprocess"
	AnalogySubsystem    = "analogy"
)

// Drop reasons recorded by ObserveDropped.
const (
	ReasonMaxLen  = "maxlen"
	ReasonOOV     = "oov_replaced"
	ReasonRemoved = "oov_removed"
)

// GenerationLatencyBuckets spans fast toy runs up to long real-model runs.
var GenerationLatencyBuckets = []float64{
	0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// Recorder groups every collector so each registry gets its own instances.
type Recorder struct {
	vocabBuilt      *prometheus.CounterVec
	vocabSize       *prometheus.GaugeVec
	generationRuns  *prometheus.CounterVec
	generationSteps *prometheus.CounterVec
	generationTime  *prometheus.HistogramVec
	dropped         *prometheus.CounterVec
	analogySkipped  prometheus.Counter
	analogyParsed   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		vocabBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: VocabSubsystem,
			Name:      "built_total",
			Help:      "Counter of vocabularies built, broken out by construction mode.",
		}, []string{"mode"}),
		vocabSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: VocabSubsystem,
			Name:      "size",
			Help:      "Number of ids in the most recently built vocabulary per mode.",
		}, []string{"mode"}),
		generationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: GenerationSubsystem,
			Name:      "runs_total",
			Help:      "Counter of generation runs broken out by outcome.",
		}, []string{"outcome"}),
		generationSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: GenerationSubsystem,
			Name:      "model_steps_total",
			Help:      "Counter of model step calls broken out by phase.",
		}, []string{"phase"}),
		generationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: GenerationSubsystem,
			Name:      "duration_seconds",
			Help:      "Generation run latency distribution.",
			Buckets:   GenerationLatencyBuckets,
		}, []string{"outcome"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: PreprocessSubsystem,
			Name:      "dropped_total",
			Help:      "Counter of examples or indices discarded or rewritten by preprocessing.",
		}, []string{"reason"}),
		analogySkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: AnalogySubsystem,
			Name:      "skipped_total",
			Help:      "Counter of analogy lines skipped for field count or unknown tokens.",
		}),
		analogyParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: AnalogySubsystem,
			Name:      "questions_total",
			Help:      "Counter of analogy questions parsed.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			r.vocabBuilt, r.vocabSize, r.generationRuns, r.generationSteps,
			r.generationTime, r.dropped, r.analogySkipped, r.analogyParsed,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// ObserveVocab records a built vocabulary.
func (r *Recorder) ObserveVocab(mode string, size int) {
	if r == nil {
		return
	}
	r.vocabBuilt.WithLabelValues(mode).Inc()
	r.vocabSize.WithLabelValues(mode).Set(float64(size))
}

// ObserveStep records one model call in phase.
func (r *Recorder) ObserveStep(phase string) {
	if r == nil {
		return
	}
	r.generationSteps.WithLabelValues(phase).Inc()
}

// ObserveRun records a finished generation run.
func (r *Recorder) ObserveRun(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.generationRuns.WithLabelValues(outcome).Inc()
	r.generationTime.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveDropped records n items discarded for reason.
func (r *Recorder) ObserveDropped(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.dropped.WithLabelValues(reason).Add(float64(n))
}

// ObserveAnalogies records one parsed question file.
func (r *Recorder) ObserveAnalogies(parsed, skipped int) {
	if r == nil {
		return
	}
	r.analogyParsed.Add(float64(parsed))
	r.analogySkipped.Add(float64(skipped))
}
