package inference

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/textgen/internal/errs"
	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/logits"
	"github.com/samcharles93/textgen/internal/metrics"
	"github.com/samcharles93/textgen/internal/tokenizer"
)

// RunSpec is one (seed, temperature) generation run.
type RunSpec struct {
	Seed        []string
	Temperature float64
	Steps       int
	RNGSeed     int64
}

// Generator drives a Model autoregressively. The model handle is passed to
// every step explicitly; the Generator holds no per-run state, so one
// Generator may serve concurrent runs as long as Model.Step is safe for
// distinct states.
type Generator struct {
	Model     Model
	Tokenizer tokenizer.Tokenizer
	// NewSampler builds the sampler owned by a single run. Defaults to a
	// logits.Sampler seeded with the run's RNGSeed.
	NewSampler func(seed int64) Sampler
	Log        logger.Logger
	Metrics    *metrics.Recorder
}

// maxPrealloc caps the id buffer reserved up front; longer runs grow it.
const maxPrealloc = 4096

// run is the mutable state of one generation: the model state, the ids
// emitted so far and the temperature in effect.
type run struct {
	phase       Phase
	state       State
	ids         []int
	temperature float64
	stats       Stats
}

// Run primes the model with every seed id except the last, then samples
// spec.Steps ids, feeding back the latest one each time. There is no
// end-of-sequence stop. Steps == 0 returns the seed unchanged.
func (g *Generator) Run(ctx context.Context, spec RunSpec) (*Result, error) {
	id := uuid.NewString()
	log := g.log().With("run", id, "temperature", spec.Temperature)

	start := time.Now()
	res, err := g.execute(ctx, log, spec)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.Metrics.ObserveRun(outcome, time.Since(start))
	if err != nil {
		return nil, err
	}
	res.ID = id
	log.Debug("generation finished", "tokens", res.Stats.TokensGenerated, "tps", res.Stats.TPS)
	return res, nil
}

func (g *Generator) execute(ctx context.Context, log logger.Logger, spec RunSpec) (*Result, error) {
	if g.Model == nil || g.Tokenizer == nil {
		return nil, errs.Configf("generator requires a model and a tokenizer")
	}
	if len(spec.Seed) == 0 {
		return nil, errs.Configf("generation seed is empty")
	}
	if spec.Steps < 0 {
		return nil, errs.Configf("steps must be >= 0, got %d", spec.Steps)
	}

	seedIDs, err := g.Tokenizer.Encode(spec.Seed)
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}

	r := &run{
		phase:       PhasePriming,
		state:       g.Model.Reset(),
		ids:         append(make([]int, 0, len(seedIDs)+min(spec.Steps, maxPrealloc)), seedIDs...),
		temperature: spec.Temperature,
	}

	if err := g.prime(ctx, r); err != nil {
		return nil, err
	}
	log.Debug("primed", "seed_ids", len(seedIDs), "priming_steps", r.stats.PrimingSteps)

	genStart := time.Now()
	if err := g.generate(ctx, r, g.sampler(spec.RNGSeed), spec.Steps); err != nil {
		return nil, err
	}
	r.stats.Duration = time.Since(genStart)
	if r.stats.Duration.Seconds() > 0 {
		r.stats.TPS = float64(r.stats.TokensGenerated) / r.stats.Duration.Seconds()
	}
	r.phase = PhaseDone

	toks, err := g.Tokenizer.Decode(r.ids)
	if err != nil {
		return nil, fmt.Errorf("decode generated ids: %w", err)
	}
	return &Result{
		Temperature: r.temperature,
		IDs:         r.ids,
		Tokens:      toks,
		Text:        strings.Join(toks, " "),
		Stats:       r.stats,
	}, nil
}

// prime feeds every seed id but the last, keeping only the updated state.
func (g *Generator) prime(ctx context.Context, r *run) error {
	for i, id := range r.ids[:len(r.ids)-1] {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, _, err := g.Model.Step(r.state, id)
		if err != nil {
			return fmt.Errorf("forward error during priming step %d: %w", i, err)
		}
		r.state = next
		r.stats.PrimingSteps++
		g.Metrics.ObserveStep(PhasePriming.String())
	}
	r.phase = PhaseGenerating
	return nil
}

func (g *Generator) generate(ctx context.Context, r *run, sampler Sampler, steps int) error {
	last := r.ids[len(r.ids)-1]
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, probs, err := g.Model.Step(r.state, last)
		if err != nil {
			return fmt.Errorf("forward error during generation step %d: %w", i, err)
		}
		r.state = next
		last = sampler.Sample(probs, r.temperature)
		r.ids = append(r.ids, last)
		r.stats.TokensGenerated++
		g.Metrics.ObserveStep(PhaseGenerating.String())
	}
	return nil
}

// Sweep runs the seed once per temperature, each from a freshly reset state
// with its own sampler seeded RNGSeed+i. Results keep the order of
// req.Temperatures. With req.Parallel the runs execute concurrently, at most
// GOMAXPROCS at a time.
func (g *Generator) Sweep(ctx context.Context, req Request) ([]*Result, error) {
	results := make([]*Result, len(req.Temperatures))
	spec := func(i int) RunSpec {
		return RunSpec{
			Seed:        req.Seed,
			Temperature: req.Temperatures[i],
			Steps:       req.Steps,
			RNGSeed:     req.RNGSeed + int64(i),
		}
	}

	if !req.Parallel {
		for i := range req.Temperatures {
			res, err := g.Run(ctx, spec(i))
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range req.Temperatures {
		eg.Go(func() error {
			res, err := g.Run(ctx, spec(i))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) sampler(seed int64) Sampler {
	if g.NewSampler != nil {
		return g.NewSampler(seed)
	}
	return logits.NewSampler(logits.SamplerConfig{Seed: seed})
}

func (g *Generator) log() logger.Logger {
	if g.Log != nil {
		return g.Log
	}
	return logger.Discard()
}
