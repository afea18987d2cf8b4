package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/adapter/csvsource"
	httpadapter "github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/adapter/http"
	kafkaadapter "github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/adapter/kafka"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/config"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/observability"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := csvsource.New(cfg.DataDir,
		csvsource.WithEncoding(cfg.SourceEncoding),
		csvsource.WithLogger(logger),
	)

	var sink pipeline.Sink
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sink = writer
		logger.Info("publishing enabled", "topic", cfg.KafkaSinkTopic, "batch_size", cfg.PublishBatchSize, "flush_interval", cfg.PublishFlushInterval)
	} else {
		logger.Info("publishing disabled, KAFKA_BROKERS not set")
	}

	seed := cfg.SampleSeed
	if !cfg.HasSampleSeed {
		seed = rand.Uint64()
	}
	logger.Info("sample seed", "seed", seed, "fixed", cfg.HasSampleSeed)
	rng := rand.New(rand.NewPCG(seed, seed))

	p := pipeline.New(loader, sink, rng, logger, metrics, pipeline.OptionsFromConfig(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	code := 0
	if _, err := p.Run(ctx); err != nil {
		code = 1
	}

	if !cfg.ExitAfterBuild {
		logger.Info("build done, serving until stopped")
		<-ctx.Done()
	}
	logger.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("shutdown complete", "exit_code", code)
	return code
}
