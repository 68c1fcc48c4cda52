package main

import (
	"context"

	"github.com/tournevent/auspost/internal/config"
	"github.com/tournevent/auspost/internal/telemetry"
	"github.com/tournevent/auspost/pkg/auspost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func newAuspostClient(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *auspost.Client {
	client := auspost.New(auspost.Config{
		APIKey:        cfg.APIKey,
		APIPassword:   cfg.APIPassword,
		AccountNumber: cfg.AccountNumber,
		BaseURL:       cfg.BaseURL,
		TestMode:      cfg.TestMode,
		UseMock:       cfg.UseMock,
	}, logger, tracer)

	if cfg.StarTrack {
		client.UseStarTrack()
	}
	return client
}
