package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/drafthook/drafthook/shared/domain"
)

// SaveSession persists one session record via the history API.
func (c *APIClient) SaveSession(record domain.SessionRecord) error {
	jsonBody, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	resp, err := c.do("POST", "/api/history", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to save session: %s", string(bodyBytes))
	}
	return nil
}

// ListSessions fetches all persisted session records, newest first.
func (c *APIClient) ListSessions() ([]domain.SessionRecord, error) {
	resp, err := c.do("GET", "/api/history", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to list sessions: %s", string(bodyBytes))
	}

	var records []domain.SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode session records: %w", err)
	}
	return records, nil
}

// ClearSessions wipes the persisted history.
func (c *APIClient) ClearSessions() error {
	resp, err := c.do("DELETE", "/api/history", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to clear sessions: %s", string(bodyBytes))
	}
	return nil
}
