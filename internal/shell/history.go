package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// HistoryKey is the key the recent-language list is stored under.
const HistoryKey = "recentLanguages"

// MaxRecent bounds the recent-language list.
const MaxRecent = 5

// PushHistory moves code to the front of list, dropping any earlier
// occurrence and truncating to MaxRecent. list is not modified.
func PushHistory(list []string, code string) []string {
	out := make([]string, 0, MaxRecent)
	out = append(out, code)
	for _, c := range list {
		if len(out) == MaxRecent {
			break
		}
		if c != code {
			out = append(out, c)
		}
	}
	return out
}

// HistoryStore persists the recent-language list.
type HistoryStore interface {
	Load() ([]string, error)
	Save(codes []string) error
}

// FileHistory keeps the list in a JSON object file under HistoryKey. Other
// keys in the file are preserved.
type FileHistory struct {
	path string
	mu   sync.Mutex
}

// NewFileHistory creates a store at path. The file is created on first Save.
func NewFileHistory(path string) *FileHistory {
	return &FileHistory{path: path}
}

// Load returns the stored list, or nil when nothing has been saved.
func (h *FileHistory) Load() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.read()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[HistoryKey]
	if !ok {
		return nil, nil
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", HistoryKey, err)
	}
	return codes, nil
}

// Save replaces the stored list.
func (h *FileHistory) Save(codes []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.read()
	if err != nil {
		// Corrupt files are overwritten.
		doc = map[string]json.RawMessage{}
	}

	raw, err := json.Marshal(slices.Clone(codes))
	if err != nil {
		return err
	}
	doc[HistoryKey] = raw

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return os.Rename(tmp, h.path)
}

func (h *FileHistory) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	if doc == nil {
		// A literal null decodes to a nil map.
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}
