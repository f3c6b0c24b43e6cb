package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papercomputeco/chatproxy/pkg/llm"
)

const (
	historyFile = "history.json"

	// HistoryTTL is how long a saved conversation survives without a new turn.
	HistoryTTL = 24 * time.Hour
)

// History is the chat command's saved conversation, oldest message first.
type History struct {
	Messages []llm.Message `json:"messages"`

	// LastUpdated is set by SaveHistory.
	LastUpdated time.Time `json:"last_updated"`
}

// Expired reports whether the history was last saved more than HistoryTTL
// before now. A history without a timestamp is expired.
func (h *History) Expired(now time.Time) bool {
	return h.LastUpdated.IsZero() || now.Sub(h.LastUpdated) > HistoryTTL
}

// LoadHistory loads the conversation from a target .chatproxy/history.json.
// Returns an empty History if none has been saved yet. An expired history is
// removed and an empty one returned in its place.
func (m *Manager) LoadHistory(overrideDir string) (*History, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, historyFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &History{}, nil
		}
		return nil, fmt.Errorf("reading chat history: %w", err)
	}

	history := &History{}
	if err := json.Unmarshal(data, history); err != nil {
		return nil, fmt.Errorf("parsing chat history: %w", err)
	}

	if history.Expired(time.Now()) {
		if err := m.ClearHistory(overrideDir); err != nil {
			return nil, err
		}
		return &History{}, nil
	}

	return history, nil
}

// SaveHistory persists the conversation to a target .chatproxy/history.json.
func (m *Manager) SaveHistory(history *History, overrideDir string) error {
	if history == nil {
		return errors.New("cannot save nil chat history")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	history.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling chat history: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, historyFile), data, 0o600); err != nil {
		return fmt.Errorf("writing chat history: %w", err)
	}

	return nil
}

// ClearHistory removes the saved conversation so the next chat session
// starts fresh. Returns nil if there is nothing to clear.
func (m *Manager) ClearHistory(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, historyFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing chat history: %w", err)
	}

	return nil
}
