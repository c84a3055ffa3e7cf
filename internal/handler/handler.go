// Package handler implements the translation gateway operations.
package handler

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/lingobridge/translation-gateway/internal/chunker"
	"github.com/lingobridge/translation-gateway/internal/domain"
	"github.com/lingobridge/translation-gateway/internal/engine"
)

// Default upper bounds on a single engine call.
const (
	DefaultTranslateTimeout = 30 * time.Second
	DefaultSpeechTimeout    = 30 * time.Second
	DefaultBatchTimeout     = 60 * time.Second
)

// Engine is the external translation engine as seen by the gateway.
type Engine interface {
	Translate(ctx context.Context, req engine.TranslateRequest) (*engine.TranslateReply, error)
	TranslateBatch(ctx context.Context, req engine.BatchRequest) ([]string, error)
	Speak(ctx context.Context, req engine.SpeechRequest) (*domain.Audio, error)
}

// Config tunes the gateway.
type Config struct {
	TranslateTimeout time.Duration
	SpeechTimeout    time.Duration
	BatchTimeout     time.Duration
	// BatchMaxTokens splits batches into sequential engine calls of at most
	// this many estimated tokens. 0 forwards each batch in one call.
	BatchMaxTokens int
}

// Gateway validates requests, forwards them to the engine and normalizes
// the replies. It holds no per-request state.
type Gateway struct {
	engine Engine
	cfg    Config
}

// New creates a Gateway. Zero timeouts fall back to the defaults.
func New(e Engine, cfg Config) *Gateway {
	if cfg.TranslateTimeout <= 0 {
		cfg.TranslateTimeout = DefaultTranslateTimeout
	}
	if cfg.SpeechTimeout <= 0 {
		cfg.SpeechTimeout = DefaultSpeechTimeout
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	return &Gateway{engine: e, cfg: cfg}
}

// Translate translates a single text.
func (g *Gateway) Translate(ctx context.Context, req domain.TranslationRequest) (*domain.Translation, error) {
	if err := validateTranslation(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.TranslateTimeout)
	defer cancel()

	reply, err := g.engine.Translate(ctx, engine.TranslateRequest{
		Text:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Translation{
		Result: domain.TranslationResult{
			OriginalText:   req.Text,
			TranslatedText: reply.TranslatedText,
			SourceLang:     req.SourceLang,
			TargetLang:     req.TargetLang,
			Confidence:     reply.Confidence,
			DetectedLang:   nonEmpty(reply.DetectedLang),
		},
		OfflineMode: reply.OfflineMode,
	}, nil
}

// BatchTranslate translates texts, returning results index-aligned with the
// input. The engine decides the order of its translations; the gateway only
// pairs translation i with texts[i].
func (g *Gateway) BatchTranslate(ctx context.Context, req domain.BatchRequest) ([]domain.TranslationResult, error) {
	if err := validateBatch(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.BatchTimeout)
	defer cancel()

	chunks := chunker.Split(req.Texts, g.cfg.BatchMaxTokens)
	translated := make([][]string, len(chunks))
	for i, chunk := range chunks {
		out, err := g.engine.TranslateBatch(ctx, engine.BatchRequest{
			Texts:      chunk.Texts,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
		})
		if err != nil {
			if len(chunks) > 1 {
				return nil, fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
			}
			return nil, err
		}
		translated[i] = out
	}

	texts := chunker.Join(chunks, translated)
	results := make([]domain.TranslationResult, len(req.Texts))
	for i, text := range req.Texts {
		results[i] = domain.TranslationResult{
			OriginalText:   text,
			TranslatedText: texts[i],
			SourceLang:     req.SourceLang,
			TargetLang:     req.TargetLang,
		}
	}
	return results, nil
}

// TextToSpeech synthesizes speech for text, passing the engine's audio
// through unmodified.
func (g *Gateway) TextToSpeech(ctx context.Context, req domain.SpeechRequest) (*domain.Audio, error) {
	if err := validateSpeech(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.SpeechTimeout)
	defer cancel()

	return g.engine.Speak(ctx, engine.SpeechRequest{Text: req.Text, Lang: req.Lang})
}

func validateTranslation(req domain.TranslationRequest) error {
	if req.Text == "" || req.SourceLang == "" || req.TargetLang == "" {
		return domain.Invalid("Missing required fields: text, sourceLang, targetLang")
	}
	if utf8.RuneCountInString(req.Text) > domain.MaxTextLength {
		return domain.Invalid("Text length exceeds maximum limit of %d characters", domain.MaxTextLength)
	}
	return nil
}

func validateBatch(req domain.BatchRequest) error {
	if req.Texts == nil || req.SourceLang == "" || req.TargetLang == "" {
		return domain.Invalid("Invalid request format")
	}
	if len(req.Texts) == 0 {
		return domain.Invalid("At least one text is required per batch")
	}
	if len(req.Texts) > domain.MaxBatchSize {
		return domain.Invalid("Maximum %d texts allowed per batch", domain.MaxBatchSize)
	}
	return nil
}

func validateSpeech(req domain.SpeechRequest) error {
	if req.Text == "" || req.Lang == "" {
		return domain.Invalid("Missing required fields: text, lang")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
