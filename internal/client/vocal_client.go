package client

import (
	"context"
	"net/http"
	"time"

	"github.com/secrethelper/api/internal/config"
)

// VocalGenerator defines the interface for vocal synthesis
type VocalGenerator interface {
	GenerateVocals(ctx context.Context, req *VocalRequest) (*VocalResult, error)
	IsConfigured() bool
}

// VocalClient implements VocalGenerator for the TTS microservice
type VocalClient struct {
	httpClient *http.Client
	baseURL    string
}

// VocalRequest represents the request for vocal synthesis. The service
// splits the lyrics by section headers and renders one chunk at a time.
type VocalRequest struct {
	Lyrics string `json:"lyrics"`
	Voice  string `json:"voice"`
}

// VocalResult is a rendered vocal track
type VocalResult struct {
	AudioURL   string  `json:"audio_url"`
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`
}

// NewVocalClient creates a new vocal synthesis client
func NewVocalClient(cfg *config.VocalConfig) *VocalClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300
	}
	return &VocalClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// GenerateVocals renders sung vocals for the given lyrics and voice preset
func (c *VocalClient) GenerateVocals(ctx context.Context, req *VocalRequest) (*VocalResult, error) {
	var result VocalResult
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/vocals", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *VocalClient) IsConfigured() bool {
	return c.baseURL != ""
}
