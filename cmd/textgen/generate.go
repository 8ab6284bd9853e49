package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/corpus"
	"github.com/samcharles93/textgen/internal/inference"
	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/tokenizer"
	"github.com/samcharles93/textgen/internal/toy"
	"github.com/samcharles93/textgen/internal/vocab"
)

// modelFlags builds a capped vocabulary from a corpus and a toy model sized
// to it.
type modelFlags struct {
	corpusPath string
	eos        string
	size       int64
	hidden     int64
	modelSeed  int64
}

func (f *modelFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "corpus",
			Usage:       "corpus the vocabulary is built from",
			Required:    true,
			Destination: &f.corpusPath,
		},
		&cli.StringFlag{
			Name:        "eos",
			Usage:       "emit this token in place of every newline",
			Destination: &f.eos,
		},
		&cli.Int64Flag{
			Name:        "size",
			Aliases:     []string{"k"},
			Usage:       "vocabulary size including the sentinel",
			Value:       5000,
			Destination: &f.size,
		},
		&cli.Int64Flag{
			Name:        "hidden",
			Usage:       "toy model hidden width",
			Value:       toy.DefaultHidden,
			Destination: &f.hidden,
		},
		&cli.Int64Flag{
			Name:        "model-seed",
			Usage:       "seed for the toy model weights",
			Value:       1,
			Destination: &f.modelSeed,
		},
	}
}

// load returns the codec, the id-encoded corpus and the model.
func (f *modelFlags) load(ctx context.Context) (*tokenizer.Codec, []int, *toy.RNN, error) {
	tokens, err := corpus.ReadFile(f.corpusPath, corpus.Options{EOS: f.eos})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read corpus: %w", err)
	}
	v, ids, err := vocab.Build(ctx, tokens, vocab.Options{
		Mode:     vocab.RankFirstOccurrence,
		Size:     int(f.size),
		Sentinel: vocab.DefaultSentinel,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	stateFrom(ctx).metrics.ObserveVocab(v.Mode().String(), v.Size())

	m, err := toy.New(toy.Config{Vocab: v.Size(), Hidden: int(f.hidden), Seed: f.modelSeed})
	if err != nil {
		return nil, nil, nil, err
	}
	return tokenizer.New(v), ids, m, nil
}

func generateCmd() *cli.Command {
	var (
		mf       modelFlags
		seedText string
		temps    []float64
		steps    int64
		rngSeed  int64
		parallel bool
	)

	return &cli.Command{
		Name:  "generate",
		Usage: "Sample continuations of a seed at several temperatures with the toy model",
		Flags: append(mf.flags(),
			&cli.StringFlag{
				Name:        "seed-text",
				Aliases:     []string{"s"},
				Usage:       "whitespace-separated seed tokens",
				Required:    true,
				Destination: &seedText,
			},
			&cli.FloatSliceFlag{
				Name:        "temps",
				Usage:       "temperatures to sweep",
				Value:       append([]float64(nil), inference.DefaultTemperatures...),
				Destination: &temps,
			},
			&cli.Int64Flag{
				Name:        "steps",
				Aliases:     []string{"n"},
				Usage:       "ids sampled after the seed",
				Value:       inference.DefaultSteps,
				Destination: &steps,
			},
			&cli.Int64Flag{
				Name:        "rng-seed",
				Usage:       "base sampler seed; run i uses seed+i",
				Value:       1,
				Destination: &rngSeed,
			},
			&cli.BoolFlag{
				Name:        "parallel",
				Usage:       "run the temperature sweep concurrently",
				Destination: &parallel,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st := stateFrom(ctx)
			log := logger.FromContext(ctx)
			applyGenerateConfig(cmd, st.cfg, &temps, &steps, &rngSeed, &parallel)

			codec, _, model, err := mf.load(ctx)
			if err != nil {
				return err
			}
			gen := &inference.Generator{
				Model:     model,
				Tokenizer: codec,
				Log:       log,
				Metrics:   st.metrics,
			}

			s, seed, p := int(steps), rngSeed, parallel
			req := inference.ResolveRequest(inference.RequestOptions{
				Seed:         strings.Fields(seedText),
				Temperatures: temps,
				Steps:        &s,
				RNGSeed:      &seed,
				Parallel:     &p,
			}, inference.GenDefaults{})

			results, err := gen.Sweep(ctx, req)
			if err != nil {
				return err
			}
			w := outWriter(cmd)
			for _, r := range results {
				_, _ = fmt.Fprintf(w, "temperature %.2f: %s\n", r.Temperature, r.Text)
			}
			return nil
		},
	}
}
