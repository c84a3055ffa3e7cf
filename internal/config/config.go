// Package config loads gateway configuration from the environment and CLI
// settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Engine transports
const (
	TransportHTTP   = "http"
	TransportLambda = "lambda"
)

// Server is the configuration of the HTTP server and the Lambda entry point.
type Server struct {
	Port            string        `env:"PORT"             envDefault:"5002"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	EngineURL            string `env:"PYTHON_SERVICE_URL"     envDefault:"http://localhost:5001"`
	EngineTransport      string `env:"ENGINE_TRANSPORT"       envDefault:"http"`
	EngineLambdaFunction string `env:"ENGINE_LAMBDA_FUNCTION"`

	TranslateTimeout time.Duration `env:"ENGINE_TRANSLATE_TIMEOUT" envDefault:"30s"`
	SpeechTimeout    time.Duration `env:"ENGINE_TTS_TIMEOUT"       envDefault:"30s"`
	BatchTimeout     time.Duration `env:"ENGINE_BATCH_TIMEOUT"     envDefault:"60s"`
	BatchMaxTokens   int           `env:"ENGINE_BATCH_MAX_TOKENS"  envDefault:"0"`

	BreakerFailures uint32        `env:"ENGINE_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"ENGINE_BREAKER_COOLDOWN" envDefault:"30s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT"  envDefault:"text"`
	LogColored bool   `env:"LOG_COLORED" envDefault:"true"`
}

// Load reads the server configuration from the environment.
func Load() (Server, error) {
	cfg, err := env.ParseAs[Server]()
	if err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Server) Validate() error {
	switch c.EngineTransport {
	case TransportHTTP:
		if c.EngineURL == "" {
			return errors.New("PYTHON_SERVICE_URL is required for the http engine transport")
		}
	case TransportLambda:
		if c.EngineLambdaFunction == "" {
			return errors.New("ENGINE_LAMBDA_FUNCTION is required for the lambda engine transport")
		}
	default:
		return fmt.Errorf("unsupported ENGINE_TRANSPORT %q", c.EngineTransport)
	}
	if c.BatchMaxTokens < 0 {
		return errors.New("ENGINE_BATCH_MAX_TOKENS must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// ListenAddr returns the address to bind. A bare port gets a leading colon.
func (c Server) ListenAddr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
