package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// HTTPModel scores text via a remote inference server. The underlying
// HTTP client is initialized once on first use and shared thereafter.
// Calls are not retried: a failed inference is fatal for the submission
// and retry is the caller's concern.
type HTTPModel struct {
	baseURL string
	timeout time.Duration

	once   sync.Once
	client *http.Client
}

// NewHTTPModel creates an HTTP-backed classifier model.
func NewHTTPModel(baseURL string, timeout time.Duration) *HTTPModel {
	return &HTTPModel{
		baseURL: baseURL,
		timeout: timeout,
	}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// Score sends the text to the inference server and returns its probability.
func (m *HTTPModel) Score(ctx context.Context, text string) (float64, error) {
	m.once.Do(func() {
		m.client = &http.Client{Timeout: m.timeout}
	})

	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return 0, fmt.Errorf("failed to encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("score request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("score request returned status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode score response: %w", err)
	}

	if out.Score < 0 || out.Score > 1 {
		return 0, fmt.Errorf("score %f outside [0,1]", out.Score)
	}

	return out.Score, nil
}
