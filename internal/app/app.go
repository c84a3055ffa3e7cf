// Package app wires configuration into a ready gateway and API handler. It
// is shared by the HTTP server and the Lambda entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lingobridge/translation-gateway/internal/config"
	"github.com/lingobridge/translation-gateway/internal/engine"
	"github.com/lingobridge/translation-gateway/internal/handler"
	"github.com/lingobridge/translation-gateway/internal/httpapi"
)

// NewTransport selects the engine transport named by cfg.
func NewTransport(ctx context.Context, cfg config.Server) (engine.Transport, error) {
	switch cfg.EngineTransport {
	case config.TransportLambda:
		t, err := engine.NewLambdaTransport(ctx, cfg.EngineLambdaFunction)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportHTTP:
		return engine.NewHTTPTransport(cfg.EngineURL, nil, engine.BreakerSettings{
			ConsecutiveFailures: cfg.BreakerFailures,
			Cooldown:            cfg.BreakerCooldown,
		}), nil
	}
	return nil, fmt.Errorf("unsupported engine transport %q", cfg.EngineTransport)
}

// NewGateway builds the gateway over the given transport.
func NewGateway(cfg config.Server, t engine.Transport) *handler.Gateway {
	return handler.New(engine.NewClient(t), handler.Config{
		TranslateTimeout: cfg.TranslateTimeout,
		SpeechTimeout:    cfg.SpeechTimeout,
		BatchTimeout:     cfg.BatchTimeout,
		BatchMaxTokens:   cfg.BatchMaxTokens,
	})
}

// NewAPI builds the full HTTP handler for cfg.
func NewAPI(ctx context.Context, cfg config.Server, logger *slog.Logger) (http.Handler, error) {
	t, err := NewTransport(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("engine transport ready",
		"transport", cfg.EngineTransport,
		"url", cfg.EngineURL,
		"function", cfg.EngineLambdaFunction,
	)

	return httpapi.NewHandler(NewGateway(cfg, t), httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}), nil
}
