package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxReplyBytes = 32 << 20

// errServerStatus marks 5xx replies so the breaker counts them as failures.
var errServerStatus = errors.New("engine server error")

// BreakerSettings configures the HTTP transport's circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker; 0 disables it.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// HTTPTransport posts JSON to an engine reachable over HTTP.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Reply]
}

// NewHTTPTransport creates a transport for the engine at baseURL. A nil
// client gets an otelhttp-instrumented default. Deadlines come from the
// request context, so the client carries no timeout of its own.
func NewHTTPTransport(baseURL string, client *http.Client, bs BreakerSettings) *HTTPTransport {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}

	if bs.ConsecutiveFailures > 0 {
		t.breaker = gobreaker.NewCircuitBreaker[*Reply](gobreaker.Settings{
			Name:        "engine",
			MaxRequests: 1,
			Timeout:     bs.Cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				// Caller cancellations say nothing about engine health.
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}

	return t
}

// Post sends payload to path and returns the engine reply.
func (t *HTTPTransport) Post(ctx context.Context, path string, payload any) (*Reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if t.breaker == nil {
		return t.do(ctx, path, body)
	}

	reply, err := t.breaker.Execute(func() (*Reply, error) {
		reply, err := t.do(ctx, path, body)
		if err == nil && reply.StatusCode >= http.StatusInternalServerError {
			return reply, errServerStatus
		}
		return reply, err
	})

	switch {
	case errors.Is(err, errServerStatus):
		return reply, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrUnavailable
	}
	return reply, err
}

func (t *HTTPTransport) do(ctx context.Context, path string, body []byte) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}

	return &Reply{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
