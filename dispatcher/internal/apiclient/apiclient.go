package apiclient

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds every history API call, matching the per-request cap
// on webhook sends.
const requestTimeout = 10 * time.Second

// APIClient handles all communication with the history backend.
type APIClient struct {
	BaseURL    string
	Token      string // optional bearer token for admin-guarded routes
	HttpClient *http.Client
}

// New creates a new client for interacting with the history backend.
func New(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		Token:      token,
		HttpClient: &http.Client{Timeout: requestTimeout},
	}
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}
