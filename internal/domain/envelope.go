package domain

import "encoding/json"

// Envelope is the JSON wrapper of every non-binary API response.
type Envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data,omitempty"`
	Error       string          `json:"error,omitempty"`
	Message     string          `json:"message,omitempty"`
	OfflineMode bool            `json:"offlineMode,omitempty"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LanguageList is the data of GET /api/languages. The indian/foreign field
// names are kept for wire compatibility.
type LanguageList struct {
	Regional map[string]string `json:"indian"`
	General  map[string]string `json:"foreign"`
	All      map[string]string `json:"all"`
}
