package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/metrics"
	"github.com/samcharles93/textgen/internal/sequence"
)

func preprocessCmd() *cli.Command {
	var (
		datasetPath string
		outPath     string
		nbWords     int64
		skipTop     int64
		maxLen      int64
		startChar   int64
		oovChar     int64
		noStart     bool
		noOOV       bool
		indexFrom   int64
		testSplit   float64
		seed        int64
	)
	def := sequence.DefaultConfig()

	return &cli.Command{
		Name:  "preprocess",
		Usage: "Shuffle, filter, threshold and split an id-encoded dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dataset",
				Usage:       `JSON file {"sequences": [[...]], "labels": [...]}`,
				Required:    true,
				Destination: &datasetPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write the processed split as JSON",
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "nb-words",
				Usage:       "exclusive upper bound on kept indices (0 = largest index present)",
				Destination: &nbWords,
			},
			&cli.Int64Flag{
				Name:        "skip-top",
				Usage:       "treat indices below this as out of vocabulary",
				Destination: &skipTop,
			},
			&cli.Int64Flag{
				Name:        "maxlen",
				Usage:       "keep only sequences strictly shorter than this (0 = no limit)",
				Destination: &maxLen,
			},
			&cli.Int64Flag{
				Name:        "start-char",
				Usage:       "marker prepended to every sequence",
				Value:       int64(*def.StartChar),
				Destination: &startChar,
			},
			&cli.BoolFlag{
				Name:        "no-start",
				Usage:       "do not prepend a start marker",
				Destination: &noStart,
			},
			&cli.Int64Flag{
				Name:        "oov-char",
				Usage:       "replacement for out-of-range indices",
				Value:       int64(*def.OOVChar),
				Destination: &oovChar,
			},
			&cli.BoolFlag{
				Name:        "no-oov",
				Usage:       "drop out-of-range indices instead of replacing them",
				Destination: &noOOV,
			},
			&cli.Int64Flag{
				Name:        "index-from",
				Usage:       "shift applied to every index",
				Value:       int64(def.IndexFrom),
				Destination: &indexFrom,
			},
			&cli.FloatFlag{
				Name:        "test-split",
				Usage:       "trailing fraction assigned to the test portion",
				Value:       def.TestSplit,
				Destination: &testSplit,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "shuffle seed",
				Value:       def.Seed,
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st := stateFrom(ctx)
			log := logger.FromContext(ctx)

			ds, err := sequence.LoadDataset(datasetPath)
			if err != nil {
				return err
			}

			cfg := sequence.Config{
				NbWords:   int(nbWords),
				SkipTop:   int(skipTop),
				MaxLen:    int(maxLen),
				IndexFrom: int(indexFrom),
				TestSplit: testSplit,
				Seed:      seed,
			}
			if !noStart {
				v := int(startChar)
				cfg.StartChar = &v
			}
			if !noOOV {
				v := int(oovChar)
				cfg.OOVChar = &v
			}

			res, err := sequence.Process(ds.Sequences, ds.Labels, cfg)
			if err != nil {
				return err
			}
			st.metrics.ObserveDropped(metrics.ReasonMaxLen, res.Stats.DroppedLong)
			st.metrics.ObserveDropped(metrics.ReasonOOV, res.Stats.Replaced)
			st.metrics.ObserveDropped(metrics.ReasonRemoved, res.Stats.Removed)

			log.Info("dataset processed",
				"input", res.Stats.Input,
				"dropped_long", res.Stats.DroppedLong,
				"oov_replaced", res.Stats.Replaced,
				"oov_removed", res.Stats.Removed,
				"nb_words", res.Stats.NbWords,
			)

			w := outWriter(cmd)
			_, _ = fmt.Fprintf(w, "train: %d\n", len(res.TrainX))
			_, _ = fmt.Fprintf(w, "test:  %d\n", len(res.TestX))

			if outPath != "" {
				if err := writeJSONFile(outPath, res); err != nil {
					return fmt.Errorf("write result: %w", err)
				}
			}
			return nil
		},
	}
}
