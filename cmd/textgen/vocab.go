package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/corpus"
	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/vocab"
)

func vocabCmd() *cli.Command {
	return &cli.Command{
		Name:  "vocab",
		Usage: "Build and inspect vocabularies",
		Commands: []*cli.Command{
			vocabBuildCmd(),
			vocabInspectCmd(),
		},
	}
}

func vocabBuildCmd() *cli.Command {
	var (
		corpusPath string
		outPath    string
		idsOut     string
		mode       string
		size       int64
		sentinel   string
		eos        string
		shards     int64
	)

	return &cli.Command{
		Name:  "build",
		Usage: "Count a whitespace-tokenised corpus and write its vocabulary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "corpus",
				Usage:       "path to the corpus text file",
				Required:    true,
				Destination: &corpusPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path (.json for JSON, anything else for counts text)",
				Required:    true,
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "ids-out",
				Usage:       "capped mode only: write the id-encoded corpus as a JSON array",
				Destination: &idsOut,
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "construction mode (lexical, capped)",
				Value:       "lexical",
				Destination: &mode,
			},
			&cli.Int64Flag{
				Name:        "size",
				Aliases:     []string{"k"},
				Usage:       "capped mode: total vocabulary size including the sentinel",
				Value:       50000,
				Destination: &size,
			},
			&cli.StringFlag{
				Name:        "sentinel",
				Usage:       "capped mode: token stored at id 0",
				Value:       vocab.DefaultSentinel,
				Destination: &sentinel,
			},
			&cli.StringFlag{
				Name:        "eos",
				Usage:       "emit this token in place of every newline",
				Destination: &eos,
			},
			&cli.Int64Flag{
				Name:        "shards",
				Usage:       "count the corpus in this many parallel shards",
				Value:       1,
				Destination: &shards,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st := stateFrom(ctx)
			log := logger.FromContext(ctx)
			applyVocabConfig(cmd, st.cfg, &mode, &size, &sentinel, &eos)

			m, err := vocab.ParseMode(mode)
			if err != nil {
				return err
			}
			tokens, err := corpus.ReadFile(corpusPath, corpus.Options{EOS: eos})
			if err != nil {
				return fmt.Errorf("read corpus: %w", err)
			}
			log.Debug("corpus loaded", "path", corpusPath, "tokens", len(tokens))

			v, ids, err := vocab.Build(ctx, tokens, vocab.Options{
				Mode:     m,
				Size:     int(size),
				Sentinel: sentinel,
				Shards:   int(shards),
			})
			if err != nil {
				return err
			}
			st.metrics.ObserveVocab(m.String(), v.Size())

			if err := v.SaveFile(outPath); err != nil {
				return fmt.Errorf("write vocabulary: %w", err)
			}
			if idsOut != "" {
				if m != vocab.RankFirstOccurrence {
					return fmt.Errorf("--ids-out requires capped mode")
				}
				if err := writeJSONFile(idsOut, ids); err != nil {
					return fmt.Errorf("write ids: %w", err)
				}
			}

			log.Info("vocabulary built", "mode", m.String(), "size", v.Size(), "tokens", len(tokens), "out", outPath)
			if c, ok := v.Sentinel(); ok {
				log.Info("sentinel coverage", "token", c, "unknown", v.Count(vocab.SentinelID))
			}
			return nil
		},
	}
}

func vocabInspectCmd() *cli.Command {
	var (
		vf  vocabFlags
		top int64
	)
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the most frequent entries of a vocabulary",
		Flags: append(vf.flags(),
			&cli.Int64Flag{
				Name:        "top",
				Usage:       "number of entries to print",
				Value:       10,
				Destination: &top,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v, err := vf.load()
			if err != nil {
				return err
			}
			w := outWriter(cmd)
			_, _ = fmt.Fprintf(w, "mode:  %s\n", v.Mode())
			_, _ = fmt.Fprintf(w, "size:  %d\n", v.Size())
			if s, ok := v.Sentinel(); ok {
				_, _ = fmt.Fprintf(w, "sentinel: %s (%d unknown)\n", s, v.Count(vocab.SentinelID))
			}
			for id, tc := range v.Counts() {
				if int64(id) >= top {
					break
				}
				_, _ = fmt.Fprintf(w, "%6d  %-20s %d\n", id, tc.Token, tc.Count)
			}
			return nil
		},
	}
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = json.NewEncoder(f).Encode(v)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
