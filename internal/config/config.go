package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

type Config struct {
	PublicKey      string `env:"RISK_PUBLIC_KEY,required,notEmpty"`
	Environment    string `env:"RISK_ENVIRONMENT" envDefault:"sandbox"`
	FramesMode     bool   `env:"RISK_FRAMES_MODE" envDefault:"false"`
	CorrelationID  string `env:"RISK_CORRELATION_ID"`
	EventSink      string `env:"RISK_EVENT_SINK" envDefault:"http"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	KafkaBrokers   string `env:"KAFKA_BROKERS"`
	NatsURL        string `env:"NATS_URL"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT" envDefault:"jaeger:4318"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	Port           string `env:"PORT" envDefault:"8082"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.EventSink {
	case "http", "kafka", "nats":
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.EventSink)
	}
	if cfg.EventSink == "kafka" && cfg.KafkaBrokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS is required for the kafka event sink")
	}
	if cfg.EventSink == "nats" && cfg.NatsURL == "" {
		return nil, fmt.Errorf("NATS_URL is required for the nats event sink")
	}
	if _, err := models.ParseEnvironment(cfg.Environment); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RiskConfig builds the SDK configuration from the host settings.
func (c *Config) RiskConfig() models.RiskConfig {
	environment, _ := models.ParseEnvironment(c.Environment)
	return models.RiskConfig{
		PublicKey:     c.PublicKey,
		Environment:   environment,
		FramesMode:    c.FramesMode,
		CorrelationID: c.CorrelationID,
	}
}
