package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/secrethelper/api/internal/config"
)

// InstrumentalGenerator defines the interface for instrumental synthesis
type InstrumentalGenerator interface {
	GenerateInstrumental(ctx context.Context, req *InstrumentalRequest) (*InstrumentalResult, error)
	IsConfigured() bool
}

// MusicClient implements InstrumentalGenerator for the synthesis microservice
type MusicClient struct {
	httpClient *http.Client
	baseURL    string
}

// InstrumentalRequest represents the request for instrumental generation
type InstrumentalRequest struct {
	Prompt    string `json:"prompt"`
	Duration  int    `json:"duration"`
	ModelSize string `json:"model_size,omitempty"`
}

// InstrumentalResult is a rendered instrumental track. The audio itself
// stays on the synthesis service; only the URL and rate travel here.
type InstrumentalResult struct {
	AudioURL   string  `json:"audio_url"`
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`
}

// NewMusicClient creates a new instrumental synthesis client
func NewMusicClient(cfg *config.MusicConfig) *MusicClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300
	}
	return &MusicClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// GenerateInstrumental renders an instrumental track from a style prompt
func (c *MusicClient) GenerateInstrumental(ctx context.Context, req *InstrumentalRequest) (*InstrumentalResult, error) {
	var result InstrumentalResult
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/instrumental", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *MusicClient) IsConfigured() bool {
	return c.baseURL != ""
}

// postJSON posts a JSON body and decodes the JSON response, shared by the
// synthesis clients.
func postJSON(ctx context.Context, httpClient *http.Client, url string, body, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
