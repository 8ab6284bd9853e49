package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/textgen/internal/api"
	"github.com/samcharles93/textgen/internal/inference"
	"github.com/samcharles93/textgen/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		mf          modelFlags
		addr        string
		readTimeout time.Duration
		storeSize   int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the encode/decode/generate REST API for a corpus vocabulary and toy model",
		Flags: append(mf.flags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "store-size",
				Usage:       "number of generations kept for GET /v1/generations/:id",
				Value:       api.DefaultStoreCapacity,
				Destination: &storeSize,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st := stateFrom(ctx)
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, st.cfg, &addr)

			codec, _, model, err := mf.load(ctx)
			if err != nil {
				return err
			}

			defaults := inference.GenDefaults{Temperatures: st.cfg.Temperatures}
			if st.cfg.Steps != nil {
				s := int(*st.cfg.Steps)
				defaults.Steps = &s
			}
			defaults.RNGSeed = st.cfg.Seed

			server := api.NewServer(api.Config{
				Codec: codec,
				Generator: &inference.Generator{
					Model:     model,
					Tokenizer: codec,
					Log:       log,
					Metrics:   st.metrics,
				},
				Defaults: defaults,
				Store:    api.NewGenerationStore(int(storeSize)),
				Metrics:  promhttp.HandlerFor(st.registry, promhttp.HandlerOpts{}),
				Log:      log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "vocab_size", codec.Size())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
