package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/logger"
	"github.com/samcharles93/textgen/internal/metrics"
)

// appState is built once per invocation by setup and shared with every
// subcommand through the context.
type appState struct {
	cfg      Config
	registry *prometheus.Registry
	metrics  *metrics.Recorder
}

type stateKey struct{}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, err
	}
	applyLoggingConfig(cmd, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	log := logger.ForFormat(logFormat, errWriter(cmd), level)

	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	if err != nil {
		return ctx, err
	}

	ctx = logger.WithContext(ctx, log)
	ctx = context.WithValue(ctx, stateKey{}, &appState{cfg: cfg, registry: reg, metrics: rec})
	return ctx, nil
}

func teardown(ctx context.Context, cmd *cli.Command) error {
	if metricsFile == "" {
		return nil
	}
	st := stateFrom(ctx)
	if err := prometheus.WriteToTextfile(metricsFile, st.registry); err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("metrics written", "path", metricsFile)
	return nil
}

// stateFrom returns the state installed by setup, or a fresh unregistered
// one when ctx does not carry it.
func stateFrom(ctx context.Context) *appState {
	if st, ok := ctx.Value(stateKey{}).(*appState); ok {
		return st
	}
	reg := prometheus.NewRegistry()
	rec, _ := metrics.New(reg)
	return &appState{registry: reg, metrics: rec}
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
