// Package client is a typed client for the translation gateway API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lingobridge/translation-gateway/internal/domain"
)

// Default per-call bounds. Batch exceeds the gateway's own 60s engine bound.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultBatchTimeout = 65 * time.Second
)

// Fallback messages used when the gateway gives no usable error.
const (
	msgLanguages = "Failed to fetch languages"
	msgTranslate = "Translation failed"
	msgBatch     = "Batch translation failed"
	msgSpeech    = "Text-to-speech failed"
	msgHealth    = "Health check failed"
)

// Error is returned by every Client method. Message is suitable for
// display. StatusCode is 0 when no response was received.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Options configures a Client.
type Options struct {
	HTTPClient   *http.Client
	Timeout      time.Duration
	BatchTimeout time.Duration
}

// Client calls the gateway at a base URL such as http://localhost:5002/api.
type Client struct {
	baseURL      string
	http         *http.Client
	timeout      time.Duration
	batchTimeout time.Duration
}

// New creates a Client.
func New(baseURL string, opts Options) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         opts.HTTPClient,
		timeout:      opts.Timeout,
		batchTimeout: opts.BatchTimeout,
	}
	if c.http == nil {
		c.http = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.batchTimeout <= 0 {
		c.batchTimeout = DefaultBatchTimeout
	}
	return c
}

// Health checks that the gateway is up.
func (c *Client) Health(ctx context.Context) (*domain.Health, error) {
	var out domain.Health
	resp, err := c.do(ctx, c.timeout, http.MethodGet, "/health", nil, msgHealth)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, &Error{Message: msgHealth, Err: err}
	}
	return &out, nil
}

// Languages fetches the language registry.
func (c *Client) Languages(ctx context.Context) (*domain.LanguageList, error) {
	var out domain.LanguageList
	if _, err := c.call(ctx, c.timeout, http.MethodGet, "/languages", nil, &out, msgLanguages); err != nil {
		return nil, err
	}
	return &out, nil
}

// Translate translates one text.
func (c *Client) Translate(ctx context.Context, req domain.TranslationRequest) (*domain.Translation, error) {
	var out domain.TranslationResult
	env, err := c.call(ctx, c.timeout, http.MethodPost, "/translate", req, &out, msgTranslate)
	if err != nil {
		return nil, err
	}
	return &domain.Translation{Result: out, OfflineMode: env.OfflineMode}, nil
}

// BatchTranslate translates texts, returning results in input order.
func (c *Client) BatchTranslate(ctx context.Context, req domain.BatchRequest) ([]domain.TranslationResult, error) {
	var out []domain.TranslationResult
	if _, err := c.call(ctx, c.batchTimeout, http.MethodPost, "/translate/batch", req, &out, msgBatch); err != nil {
		return nil, err
	}
	return out, nil
}

// TextToSpeech fetches synthesized audio for text.
func (c *Client) TextToSpeech(ctx context.Context, req domain.SpeechRequest) (*domain.Audio, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, http.MethodPost, "/tts", req, msgSpeech)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: msgSpeech, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, envelopeError(resp.StatusCode, body, msgSpeech)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = domain.AudioContentType
	}
	return &domain.Audio{ContentType: contentType, Body: body}, nil
}

// call performs a request expecting a success envelope and decodes its data
// into out.
func (c *Client) call(ctx context.Context, timeout time.Duration, method, path string, payload, out any, fallback string) (*domain.Envelope, error) {
	body, err := c.do(ctx, timeout, method, path, payload, fallback)
	if err != nil {
		return nil, err
	}

	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{StatusCode: http.StatusOK, Message: fallback, Err: err}
	}
	if !env.Success {
		return nil, &Error{StatusCode: http.StatusOK, Message: composeMessage(env, fallback)}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, &Error{StatusCode: http.StatusOK, Message: fallback, Err: err}
	}
	return &env, nil
}

// do performs a request under timeout and returns the body of a 200 reply.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, payload any, fallback string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.send(ctx, method, path, payload, fallback)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fallback, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, envelopeError(resp.StatusCode, body, fallback)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any, fallback string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Message: fallback, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Message: fallback, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: fallback, Err: err}
	}
	return resp, nil
}

func envelopeError(status int, body []byte, fallback string) *Error {
	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{StatusCode: status, Message: fallback}
	}
	return &Error{StatusCode: status, Message: composeMessage(env, fallback)}
}

// composeMessage joins the envelope's error label and detail.
func composeMessage(env domain.Envelope, fallback string) string {
	switch {
	case env.Error != "" && env.Message != "" && env.Message != env.Error:
		return env.Error + ": " + env.Message
	case env.Error != "":
		return env.Error
	case env.Message != "":
		return env.Message
	}
	return fallback
}
