// Package httpapi exposes the gateway operations as a JSON HTTP API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lingobridge/translation-gateway/internal/domain"
)

// HealthMessage is reported by GET /api/health.
const HealthMessage = "Rural School Translation API is running"

// maxBodyBytes bounds request bodies; a full batch of 50 texts of 5000
// three-byte characters fits.
const maxBodyBytes = 1 << 20

// Gateway is the set of operations served by the API.
type Gateway interface {
	Translate(ctx context.Context, req domain.TranslationRequest) (*domain.Translation, error)
	BatchTranslate(ctx context.Context, req domain.BatchRequest) ([]domain.TranslationResult, error)
	TextToSpeech(ctx context.Context, req domain.SpeechRequest) (*domain.Audio, error)
}

// Options configures NewHandler.
type Options struct {
	Logger *slog.Logger
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// RateLimitRPS is the per-client request rate on the POST endpoints;
	// 0 disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewHandler builds the API handler with its middleware chain.
func NewHandler(gw Gateway, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := func(h http.HandlerFunc) http.Handler { return h }
	if opts.RateLimitRPS > 0 {
		limiter := newKeyedLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
		limit = func(h http.HandlerFunc) http.Handler {
			return rateLimitMiddleware(limiter, logger)(h)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler(logger))
	mux.HandleFunc("GET /api/languages", languagesHandler(logger))
	mux.Handle("POST /api/translate", limit(translateHandler(gw, logger)))
	mux.Handle("POST /api/translate/batch", limit(batchHandler(gw, logger)))
	mux.Handle("POST /api/tts", limit(speechHandler(gw, logger)))
	mux.HandleFunc("/", notFoundHandler(logger))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	var h http.Handler = mux
	h = corsHandler.Handler(h)
	h = securityHeaders(h)
	h = recoverMiddleware(logger)(h)
	h = loggingMiddleware(logger)(h)
	return otelhttp.NewHandler(h, "gateway")
}
