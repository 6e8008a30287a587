package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"srcdsbot/internal/config"
	"srcdsbot/internal/logx"
	"srcdsbot/internal/matrix"
	"srcdsbot/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.New(logx.ParseLevel(os.Getenv("LOG_LEVEL"))).Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := logx.NewWithWriter(logx.ParseLevel(cfg.LogLevel), os.Stdout, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics listener stopped", "err", err)
			}
		}()
	}

	bot, err := matrix.New(ctx, cfg, logger, recorder)
	if err != nil {
		logger.Error("failed creating bot", "err", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := bot.Close(); closeErr != nil {
			logger.Warn("failed closing docker client", "err", closeErr)
		}
	}()

	if err := bot.Run(ctx); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
		logger.Error("bot stopped with error", "err", err)
		os.Exit(1)
	}

	logger.Info("bot shutdown complete")
}
