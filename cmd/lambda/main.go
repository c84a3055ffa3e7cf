// Package main runs the translation gateway as a Lambda function behind an
// API Gateway HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/lingobridge/translation-gateway/internal/app"
	"github.com/lingobridge/translation-gateway/internal/config"
	"github.com/lingobridge/translation-gateway/internal/lambdaproxy"
	"github.com/lingobridge/translation-gateway/internal/logging"
)

type function struct {
	api    http.Handler
	warmer *warmer
	logger *slog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: "json"})

	ctx := context.Background()
	api, err := app.NewAPI(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build api", logging.Err(err))
		os.Exit(1)
	}

	fn := &function{
		api:    api,
		warmer: newWarmer(os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), logger),
		logger: logger,
	}
	lambda.Start(fn.handle)
}

func (f *function) handle(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup pings carry no HTTP request and must not reach the API.
	if warmup, ok := parseWarmupEvent(event); ok {
		return f.warmer.handle(ctx, warmup), nil
	}

	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return lambdaproxy.Serve(ctx, f.api, req)
}
