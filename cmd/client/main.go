package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caminho-app/caminho/internal/client/cli"
	"github.com/caminho-app/caminho/internal/client/config"
	"github.com/caminho-app/caminho/internal/logging"
	"github.com/caminho-app/caminho/internal/metrics"
)

func main() {
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector metrics.Collector = metrics.Nop{}
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector = metrics.NewPromCollector(registry)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(registry))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	app, err := cli.NewApp(ctx, cfg, logger, collector)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
