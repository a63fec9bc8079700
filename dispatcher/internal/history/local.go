package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/drafthook/drafthook/shared/domain"
)

// LocalStore is the fallback cache: a single JSON file holding at most
// domain.MaxHistoryEntries session records, oldest evicted first.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Append adds a record, evicting the oldest entries beyond the cap.
func (l *LocalStore) Append(record domain.SessionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}
	records = append(records, record)
	if len(records) > domain.MaxHistoryEntries {
		records = records[len(records)-domain.MaxHistoryEntries:]
	}
	return l.write(records)
}

// Load returns all cached records. A missing cache file is an empty history,
// not an error.
func (l *LocalStore) Load() ([]domain.SessionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Clear removes the cache file.
func (l *LocalStore) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear local history: %w", err)
	}
	return nil
}

func (l *LocalStore) load() ([]domain.SessionRecord, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local history: %w", err)
	}

	var records []domain.SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse local history: %w", err)
	}
	return records, nil
}

func (l *LocalStore) write(records []domain.SessionRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal local history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	// write-then-rename keeps the cache readable if we crash mid-write
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write local history: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace local history: %w", err)
	}
	return nil
}
