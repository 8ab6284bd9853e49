package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/vocab"
)

var (
	logLevel    string
	logFormat   string
	debug       bool
	configFile  string
	metricsFile string
)

func rootFlags() []cli.Flag {
	return append(loggingFlags(),
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: $XDG_CONFIG_HOME/textgen/config.yaml)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "metrics-file",
			Usage:       "write collected metrics in text exposition format to this file on exit",
			Destination: &metricsFile,
		},
	)
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// vocabFlags selects a saved vocabulary and the mode used to interpret it.
type vocabFlags struct {
	path string
	mode string
}

func (f *vocabFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vocab",
			Aliases:     []string{"v"},
			Usage:       "vocabulary file written by 'vocab build' (.json or counts text)",
			Required:    true,
			Destination: &f.path,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "vocabulary mode for counts files (lexical, capped)",
			Value:       "lexical",
			Destination: &f.mode,
		},
	}
}

func (f *vocabFlags) load() (*vocab.Vocabulary, error) {
	mode, err := vocab.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}
	return vocab.LoadFile(f.path, mode)
}
