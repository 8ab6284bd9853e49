package main

import (
	"context"
	"fmt"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/inference"
	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/window"
)

func perplexityCmd() *cli.Command {
	var (
		mf        modelFlags
		batchSize int64
		numSteps  int64
	)
	return &cli.Command{
		Name:  "perplexity",
		Usage: "Score the toy model over a corpus with truncated windows",
		Flags: append(mf.flags(),
			&cli.Int64Flag{
				Name:        "batch-size",
				Usage:       "parallel streams",
				Value:       20,
				Destination: &batchSize,
			},
			&cli.Int64Flag{
				Name:        "num-steps",
				Usage:       "ids per window",
				Value:       20,
				Destination: &numSteps,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			_, ids, model, err := mf.load(ctx)
			if err != nil {
				return err
			}
			ppl, windows, err := perplexity(ctx, model, ids, int(batchSize), int(numSteps))
			if err != nil {
				return err
			}
			log.Info("scored corpus", "windows", windows, "ids", len(ids))
			_, err = fmt.Fprintf(outWriter(cmd), "perplexity: %.3f\n", ppl)
			return err
		},
	}
}

// perplexity runs one epoch of truncated windows through m, carrying each
// stream's state across windows, and returns exp(mean negative log-likelihood).
func perplexity(ctx context.Context, m inference.Model, ids []int, batchSize, numSteps int) (float64, int, error) {
	it, err := window.Iterate(ids, batchSize, numSteps)
	if err != nil {
		return 0, 0, err
	}
	states := window.NewStreamStates(it.BatchSize(), m.Reset)

	var nll float64
	var n int
	err = window.RunEpoch(ctx, it, states, func(_ context.Context, w window.Window, in []inference.State) ([]inference.State, error) {
		out := make([]inference.State, len(in))
		for b, s := range in {
			for t, id := range w.Inputs[b] {
				next, probs, err := m.Step(s, id)
				if err != nil {
					return nil, err
				}
				p := float64(probs[w.Targets[b][t]])
				nll -= math.Log(max(p, 1e-12))
				n++
				s = next
			}
			out[b] = s
		}
		return out, nil
	})
	if err != nil {
		return 0, 0, err
	}
	return math.Exp(nll / float64(n)), it.EpochSize(), nil
}
