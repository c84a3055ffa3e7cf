// Package domain contains the core domain types for the translation gateway.
package domain

// Limits enforced by the gateway before any engine call.
const (
	MaxTextLength = 5000
	MaxBatchSize  = 50
)

// TranslationRequest is the input to a single translation.
type TranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// TranslationResult is the normalized outcome of one translation.
// Confidence and DetectedLang are nil when the engine omits them and
// encode as JSON null.
type TranslationResult struct {
	OriginalText   string   `json:"originalText"`
	TranslatedText string   `json:"translatedText"`
	SourceLang     string   `json:"sourceLang"`
	TargetLang     string   `json:"targetLang"`
	Confidence     *float64 `json:"confidence"`
	DetectedLang   *string  `json:"detectedLang"`
}

// Translation is a result plus the engine's offline flag.
type Translation struct {
	Result      TranslationResult
	OfflineMode bool
}

// BatchRequest is the input to a batch translation.
type BatchRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
}

// SpeechRequest is the input to text-to-speech.
type SpeechRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Audio is an opaque synthesized payload.
type Audio struct {
	ContentType string
	Body        []byte
}

// AudioContentType is the default content type of synthesized speech.
const AudioContentType = "audio/mpeg"
