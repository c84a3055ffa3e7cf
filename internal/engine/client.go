package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lingobridge/translation-gateway/internal/domain"
)

// Engine paths
const (
	PathTranslate = "/translate"
	PathBatch     = "/translate/batch"
	PathSpeech    = "/tts"
)

// TranslateRequest is the engine's single translation payload.
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// TranslateReply is the engine's single translation answer.
type TranslateReply struct {
	TranslatedText string   `json:"translated_text"`
	Confidence     *float64 `json:"confidence,omitempty"`
	DetectedLang   *string  `json:"detected_lang,omitempty"`
	OfflineMode    bool     `json:"offline_mode,omitempty"`
}

// BatchRequest is the engine's batch payload.
type BatchRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

// BatchReply is the engine's batch answer, index-aligned with the request.
type BatchReply struct {
	Translations []string `json:"translations"`
}

// SpeechRequest is the engine's text-to-speech payload.
type SpeechRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// errorReply covers both the engine's own error body and Lambda's
// unhandled function error body.
type errorReply struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

// Client calls the engine operations over a Transport and classifies
// failures into the gateway error taxonomy. Deadlines come from ctx.
type Client struct {
	transport Transport
}

// NewClient creates a Client.
func NewClient(t Transport) *Client {
	return &Client{transport: t}
}

// Translate translates a single text.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslateReply, error) {
	reply, err := c.post(ctx, "translate", PathTranslate, req)
	if err != nil {
		return nil, err
	}

	var out TranslateReply
	if err := json.Unmarshal(reply.Body, &out); err != nil {
		return nil, &domain.UpstreamError{Op: "translate", Message: "malformed engine reply", Err: err}
	}
	return &out, nil
}

// TranslateBatch translates texts in one engine call.
func (c *Client) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	reply, err := c.post(ctx, "batch", PathBatch, req)
	if err != nil {
		return nil, err
	}

	var out BatchReply
	if err := json.Unmarshal(reply.Body, &out); err != nil {
		return nil, &domain.UpstreamError{Op: "batch", Message: "malformed engine reply", Err: err}
	}
	if len(out.Translations) != len(req.Texts) {
		return nil, &domain.UpstreamError{
			Op:      "batch",
			Message: fmt.Sprintf("engine returned %d translations for %d texts", len(out.Translations), len(req.Texts)),
		}
	}
	return out.Translations, nil
}

// Speak synthesizes speech and returns the raw audio.
func (c *Client) Speak(ctx context.Context, req SpeechRequest) (*domain.Audio, error) {
	reply, err := c.post(ctx, "tts", PathSpeech, req)
	if err != nil {
		return nil, err
	}

	contentType := domain.AudioContentType
	if strings.HasPrefix(reply.ContentType, "audio/") {
		contentType = reply.ContentType
	}
	return &domain.Audio{ContentType: contentType, Body: reply.Body}, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any) (*Reply, error) {
	reply, err := c.transport.Post(ctx, path, payload)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, &domain.UpstreamError{Op: op, Message: "translation engine timed out", Err: err}
		case errors.Is(err, ErrUnavailable):
			return nil, &domain.UpstreamError{Op: op, Message: ErrUnavailable.Error(), Err: err}
		}
		return nil, &domain.TransportError{Op: op, Err: err}
	}

	if !reply.OK() {
		return nil, &domain.UpstreamError{Op: op, Message: replyMessage(reply)}
	}
	return reply, nil
}

func replyMessage(reply *Reply) string {
	var body errorReply
	if err := json.Unmarshal(reply.Body, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.ErrorMessage != "" {
			return body.ErrorMessage
		}
	}
	return fmt.Sprintf("engine responded with status %d", reply.StatusCode)
}
