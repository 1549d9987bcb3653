package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/chishiki/internal/models"
)

// HTTPClient talks JSON to a vector index service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the index service at baseURL.
// A timeout of 0 uses a 30 second default.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Query       string  `json:"query"`
	Limit       int     `json:"limit"`
	Threshold   float64 `json:"threshold"`
}

type searchResponse struct {
	Results []*models.Fragment `json:"results"`
}

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, workspaceID, query string, limit int, threshold float64) ([]*models.Fragment, error) {
	body, err := json.Marshal(searchRequest{
		WorkspaceID: workspaceID,
		Query:       query,
		Limit:       limit,
		Threshold:   threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector index request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vector index returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Results, nil
}
