package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingobridge/translation-gateway/internal/domain"
	"github.com/lingobridge/translation-gateway/internal/engine"
	"github.com/lingobridge/translation-gateway/internal/handler"
)

type fakeGateway struct {
	translate func(context.Context, domain.TranslationRequest) (*domain.Translation, error)
	batch     func(context.Context, domain.BatchRequest) ([]domain.TranslationResult, error)
	speak     func(context.Context, domain.SpeechRequest) (*domain.Audio, error)
}

func (f *fakeGateway) Translate(ctx context.Context, req domain.TranslationRequest) (*domain.Translation, error) {
	return f.translate(ctx, req)
}

func (f *fakeGateway) BatchTranslate(ctx context.Context, req domain.BatchRequest) ([]domain.TranslationResult, error) {
	return f.batch(ctx, req)
}

func (f *fakeGateway) TextToSpeech(ctx context.Context, req domain.SpeechRequest) (*domain.Audio, error) {
	return f.speak(ctx, req)
}

// stubEngine drives a real handler.Gateway so validation flows end to end.
type stubEngine struct {
	translate func(engine.TranslateRequest) (*engine.TranslateReply, error)
	calls     int
}

func (s *stubEngine) Translate(_ context.Context, req engine.TranslateRequest) (*engine.TranslateReply, error) {
	s.calls++
	return s.translate(req)
}

func (s *stubEngine) TranslateBatch(_ context.Context, req engine.BatchRequest) ([]string, error) {
	s.calls++
	out := make([]string, len(req.Texts))
	for i, t := range req.Texts {
		out[i] = strings.ToUpper(t)
	}
	return out, nil
}

func (s *stubEngine) Speak(_ context.Context, req engine.SpeechRequest) (*domain.Audio, error) {
	s.calls++
	return &domain.Audio{ContentType: domain.AudioContentType, Body: []byte("ID3" + req.Text)}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, gw Gateway, opts Options) *httptest.Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	srv := httptest.NewServer(NewHandler(gw, opts))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{}, Options{})

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "ok", env["status"])
	assert.Equal(t, HealthMessage, env["message"])
}

func TestLanguages(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{}, Options{})

	resp, err := http.Get(srv.URL + "/api/languages")
	require.NoError(t, err)
	defer resp.Body.Close()

	var env struct {
		Success bool                `json:"success"`
		Data    domain.LanguageList `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	assert.True(t, env.Success)
	assert.Len(t, env.Data.Regional, 22)
	assert.Len(t, env.Data.General, 5)
	assert.Len(t, env.Data.All, 27)
	assert.Equal(t, "Hindi", env.Data.Regional["hi"])
	assert.Equal(t, "French", env.Data.General["fr"])
}

func TestTranslateSuccess(t *testing.T) {
	eng := &stubEngine{translate: func(req engine.TranslateRequest) (*engine.TranslateReply, error) {
		return &engine.TranslateReply{TranslatedText: "नमस्ते", OfflineMode: true}, nil
	}}
	srv := newTestServer(t, handler.New(eng, handler.Config{}), Options{})

	resp := postJSON(t, srv.URL+"/api/translate", `{"text":"Hello","sourceLang":"en","targetLang":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, true, env["offlineMode"])

	data := env["data"].(map[string]any)
	assert.Equal(t, "Hello", data["originalText"])
	assert.Equal(t, "नमस्ते", data["translatedText"])
	assert.Equal(t, "en", data["sourceLang"])
	assert.Equal(t, "hi", data["targetLang"])
	assert.Contains(t, data, "confidence")
	assert.Nil(t, data["confidence"])
	assert.Contains(t, data, "detectedLang")
	assert.Nil(t, data["detectedLang"])
}

func TestTranslateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing target", `{"text":"Hello","sourceLang":"en"}`, "Missing required fields: text, sourceLang, targetLang"},
		{"empty text", `{"text":"","sourceLang":"en","targetLang":"hi"}`, "Missing required fields: text, sourceLang, targetLang"},
		{"too long", `{"text":"` + strings.Repeat("a", 5001) + `","sourceLang":"en","targetLang":"hi"}`, "Text length exceeds maximum limit of 5000 characters"},
		{"malformed json", `{"text":`, "Invalid JSON payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &stubEngine{}
			srv := newTestServer(t, handler.New(eng, handler.Config{}), Options{})

			resp := postJSON(t, srv.URL+"/api/translate", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			env := decodeEnvelope(t, resp)
			assert.Equal(t, false, env["success"])
			assert.Equal(t, tt.want, env["error"])
			assert.Zero(t, eng.calls)
		})
	}
}

func TestTranslateEngineFailure(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{
			name:        "engine message exposed",
			err:         &domain.UpstreamError{Op: "translate", Message: "model not loaded"},
			wantMessage: "model not loaded",
		},
		{
			name:        "transport error hidden",
			err:         &domain.TransportError{Op: "translate", Err: errors.New("dial tcp 10.0.0.5:5001: connection refused")},
			wantMessage: "translation engine unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{translate: func(context.Context, domain.TranslationRequest) (*domain.Translation, error) {
				return nil, tt.err
			}}
			srv := newTestServer(t, gw, Options{})

			resp := postJSON(t, srv.URL+"/api/translate", `{"text":"Hello","sourceLang":"en","targetLang":"hi"}`)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

			env := decodeEnvelope(t, resp)
			assert.Equal(t, false, env["success"])
			assert.Equal(t, "Translation service error", env["error"])
			assert.Equal(t, tt.wantMessage, env["message"])
		})
	}
}

func TestBatchPreservesOrder(t *testing.T) {
	eng := &stubEngine{}
	srv := newTestServer(t, handler.New(eng, handler.Config{}), Options{})

	resp := postJSON(t, srv.URL+"/api/translate/batch", `{"texts":["a","b","c"],"sourceLang":"en","targetLang":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Success bool                       `json:"success"`
		Data    []domain.TranslationResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	require.Len(t, env.Data, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, env.Data[i].OriginalText)
		assert.Equal(t, strings.ToUpper(want), env.Data[i].TranslatedText)
	}
}

func TestBatchValidation(t *testing.T) {
	many := `"x"` + strings.Repeat(`,"x"`, 50)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"texts not a list", `{"texts":"hello","sourceLang":"en","targetLang":"hi"}`, "Invalid request format"},
		{"texts missing", `{"sourceLang":"en","targetLang":"hi"}`, "Invalid request format"},
		{"too many", `{"texts":[` + many + `],"sourceLang":"en","targetLang":"hi"}`, "Maximum 50 texts allowed per batch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &stubEngine{}
			srv := newTestServer(t, handler.New(eng, handler.Config{}), Options{})

			resp := postJSON(t, srv.URL+"/api/translate/batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, decodeEnvelope(t, resp)["error"])
			assert.Zero(t, eng.calls)
		})
	}
}

func TestSpeechReturnsAudio(t *testing.T) {
	srv := newTestServer(t, handler.New(&stubEngine{}, handler.Config{}), Options{})

	resp := postJSON(t, srv.URL+"/api/tts", `{"text":"hello","lang":"en"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3hello"), body)
}

func TestSpeechFailure(t *testing.T) {
	gw := &fakeGateway{speak: func(context.Context, domain.SpeechRequest) (*domain.Audio, error) {
		return nil, &domain.UpstreamError{Op: "tts", Message: "voice unavailable"}
	}}
	srv := newTestServer(t, gw, Options{})

	resp := postJSON(t, srv.URL+"/api/tts", `{"text":"hello","lang":"xx"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "Text-to-speech service error", env["error"])
	assert.Equal(t, "voice unavailable", env["message"])
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{}, Options{})

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Route GET /api/nope not found", env["error"])
}

func TestRateLimit(t *testing.T) {
	gw := &fakeGateway{translate: func(_ context.Context, req domain.TranslationRequest) (*domain.Translation, error) {
		return &domain.Translation{Result: domain.TranslationResult{OriginalText: req.Text}}, nil
	}}
	srv := newTestServer(t, gw, Options{RateLimitRPS: 0.01, RateLimitBurst: 2})

	body := `{"text":"Hello","sourceLang":"en","targetLang":"hi"}`
	assert.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/translate", body).StatusCode)
	assert.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/translate", body).StatusCode)

	resp := postJSON(t, srv.URL+"/api/translate", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "Too many requests", decodeEnvelope(t, resp)["error"])

	health, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestPanicRecovery(t *testing.T) {
	gw := &fakeGateway{translate: func(context.Context, domain.TranslationRequest) (*domain.Translation, error) {
		panic("boom")
	}}
	srv := newTestServer(t, gw, Options{})

	resp := postJSON(t, srv.URL+"/api/translate", `{"text":"Hello","sourceLang":"en","targetLang":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Something went wrong!", decodeEnvelope(t, resp)["error"])
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	srv := newTestServer(t, &fakeGateway{}, Options{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "9.9.9.9:1", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", "3.3.3.3"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}
