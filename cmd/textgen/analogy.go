package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/analogy"
	"github.com/samcharles93/textgen/internal/logger"
)

func analogyCmd() *cli.Command {
	var (
		vf        vocabFlags
		questions string
		show      int64
	)
	return &cli.Command{
		Name:  "analogy",
		Usage: "Parse an analogy question file into id quadruples",
		Flags: append(vf.flags(),
			&cli.StringFlag{
				Name:        "questions",
				Aliases:     []string{"q"},
				Usage:       "question file (': section' headers, 4 tokens per line)",
				Required:    true,
				Destination: &questions,
			},
			&cli.Int64Flag{
				Name:        "show",
				Usage:       "print the first N parsed quadruples",
				Destination: &show,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st := stateFrom(ctx)
			v, err := vf.load()
			if err != nil {
				return err
			}
			res, err := analogy.ReadFile(questions, v.ID)
			if err != nil {
				return err
			}
			st.metrics.ObserveAnalogies(len(res.Questions), res.Skipped)
			logger.FromContext(ctx).Info("analogies parsed",
				"questions", len(res.Questions), "skipped", res.Skipped, "total", res.Total())

			w := outWriter(cmd)
			_, _ = fmt.Fprintf(w, "questions: %d\n", len(res.Questions))
			_, _ = fmt.Fprintf(w, "skipped:   %d\n", res.Skipped)
			for i, q := range res.Questions {
				if int64(i) >= show {
					break
				}
				_, _ = fmt.Fprintf(w, "%d %d %d %d\n", q[0], q[1], q[2], q[3])
			}
			return nil
		},
	}
}
