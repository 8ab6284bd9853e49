package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "textgen",
		Usage:  "Vocabulary, sequence preprocessing and sampling toolkit for word-level language models",
		Flags:  rootFlags(),
		Before: setup,
		After:  teardown,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			vocabCmd(),
			encodeCmd(),
			decodeCmd(),
			preprocessCmd(),
			analogyCmd(),
			generateCmd(),
			perplexityCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
