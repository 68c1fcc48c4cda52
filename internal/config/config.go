package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Australia Post
	APIKey        string `envconfig:"AUSPOST_API_KEY"`
	APIPassword   string `envconfig:"AUSPOST_API_PASSWORD"`
	AccountNumber string `envconfig:"AUSPOST_ACCOUNT_NUMBER"`
	BaseURL       string `envconfig:"AUSPOST_BASE_URL"`
	TestMode      bool   `envconfig:"AUSPOST_TEST_MODE" default:"false"`
	UseMock       bool   `envconfig:"AUSPOST_USE_MOCK" default:"false"`
	StarTrack     bool   `envconfig:"AUSPOST_STARTRACK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.observability.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"auspost-gateway"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("auspost.test_mode", c.TestMode),
		attribute.Bool("auspost.startrack", c.StarTrack),
	}
}
