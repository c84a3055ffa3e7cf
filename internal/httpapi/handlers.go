package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lingobridge/translation-gateway/internal/domain"
	"github.com/lingobridge/translation-gateway/internal/languages"
	"github.com/lingobridge/translation-gateway/internal/logging"
)

// Error labels returned in the envelope's error field.
const (
	labelTranslate = "Translation service error"
	labelBatch     = "Batch translation service error"
	labelSpeech    = "Text-to-speech service error"

	msgUnreachable = "translation engine unreachable"
)

func healthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, domain.Health{Status: "ok", Message: HealthMessage})
	}
}

func languagesHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := languages.List()
		writeData(w, logger, domain.LanguageList{
			Regional: reg.Regional,
			General:  reg.General,
			All:      reg.All,
		}, false)
	}
}

func translateHandler(gw Gateway, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.TranslationRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error(), "")
			return
		}

		out, err := gw.Translate(r.Context(), req)
		if err != nil {
			writeFailure(w, r, logger, labelTranslate, err)
			return
		}
		writeData(w, logger, out.Result, out.OfflineMode)
	}
}

func batchHandler(gw Gateway, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.BatchRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, logger, http.StatusBadRequest, "Invalid request format", "")
			return
		}

		results, err := gw.BatchTranslate(r.Context(), req)
		if err != nil {
			writeFailure(w, r, logger, labelBatch, err)
			return
		}
		writeData(w, logger, results, false)
	}
}

func speechHandler(gw Gateway, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SpeechRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error(), "")
			return
		}

		audio, err := gw.TextToSpeech(r.Context(), req)
		if err != nil {
			writeFailure(w, r, logger, labelSpeech, err)
			return
		}

		w.Header().Set("Content-Type", audio.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(audio.Body)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(audio.Body); err != nil {
			logger.Error("failed to write audio response", logging.Err(err))
		}
	}
}

func notFoundHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path), "")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Invalid("Request body too large")
		}
		return domain.Invalid("Invalid JSON payload")
	}
	return nil
}

// writeFailure maps a gateway error onto the envelope. Validation errors are
// the caller's fault; everything else is logged and reported as a 500 with
// only the engine's message exposed.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, label string, err error) {
	if domain.IsValidation(err) {
		writeError(w, logger, http.StatusBadRequest, err.Error(), "")
		return
	}

	logger.ErrorContext(r.Context(), label, "path", r.URL.Path, logging.Err(err))
	writeError(w, logger, http.StatusInternalServerError, label, domain.PublicMessage(err, msgUnreachable))
}

func writeData(w http.ResponseWriter, logger *slog.Logger, data any, offline bool) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to encode response data", logging.Err(err))
		writeError(w, logger, http.StatusInternalServerError, "Something went wrong!", "")
		return
	}
	writeJSON(w, logger, http.StatusOK, domain.Envelope{Success: true, Data: raw, OfflineMode: offline})
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg, detail string) {
	writeJSON(w, logger, status, domain.Envelope{Success: false, Error: msg, Message: detail})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logging.Err(err))
	}
}
