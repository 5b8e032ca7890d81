package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/secrethelper/api/internal/config"
)

// TextGenerator defines the interface for the text-generation backend
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	IsConfigured() bool
}

// OllamaClient handles communication with a local Ollama server
type OllamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// generateRequest is the body for Ollama's /api/generate endpoint
type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient creates a new Ollama API client
func NewOllamaClient(cfg *config.OllamaConfig) *OllamaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	return &OllamaClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL:     cfg.URL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate sends a single-shot generation request. The format hint asks the
// backend for JSON output, but the response is still treated as untrusted.
func (c *OllamaClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		System: system,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: generateOptions{
			Temperature: c.temperature,
			TopP:        0.9,
			NumPredict:  c.maxTokens,
			NumCtx:      4096,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// CheckModel verifies the server is reachable and the configured model is
// pulled. Returns (online, modelReady, humanMessage).
func (c *OllamaClient) CheckModel(ctx context.Context) (bool, bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false, false, "Ollama offline"
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, false, "Ollama offline, run: ollama serve"
	}
	defer resp.Body.Close()

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, false, "Ollama offline, run: ollama serve"
	}

	base := strings.SplitN(c.model, ":", 2)[0]
	for _, m := range tags.Models {
		if strings.Contains(m.Name, base) {
			return true, true, fmt.Sprintf("Ollama OK, %s ready", c.model)
		}
	}
	return true, false, fmt.Sprintf("Ollama running but model %s not pulled, run: ollama pull %s", c.model, c.model)
}

// IsConfigured returns true if the client has valid configuration
func (c *OllamaClient) IsConfigured() bool {
	return c.baseURL != ""
}
