package client

import (
	"context"
	"net/http"
	"time"

	"github.com/secrethelper/api/internal/config"
)

// AudioMixer defines the interface for mixing and export operations
type AudioMixer interface {
	Mix(ctx context.Context, req *MixRequest) (*MixResult, error)
	SaveInstrumental(ctx context.Context, req *SaveInstrumentalRequest) (*MixResult, error)
	IsConfigured() bool
}

// MixerClient implements AudioMixer for the mixing microservice
type MixerClient struct {
	httpClient  *http.Client
	baseURL     string
	vocalVolume float64
	musicVolume float64
	sampleRate  int
}

// MixRequest combines an instrumental and a vocal track into a final song.
// The mixer loops the instrumental to cover the vocal length, normalizes
// peaks and exports at the requested sample rate.
type MixRequest struct {
	InstrumentalURL string            `json:"instrumental_url"`
	VocalURL        string            `json:"vocal_url"`
	VocalVolume     float64           `json:"vocal_volume"`
	MusicVolume     float64           `json:"music_volume"`
	SampleRate      int               `json:"sample_rate"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	OutputKey       string            `json:"output_key"`
}

// SaveInstrumentalRequest exports an instrumental-only track
type SaveInstrumentalRequest struct {
	InstrumentalURL string            `json:"instrumental_url"`
	SampleRate      int               `json:"sample_rate"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	OutputKey       string            `json:"output_key"`
}

// MixResult is the exported track
type MixResult struct {
	OutputURL string  `json:"output_url"`
	Duration  float64 `json:"duration"`
	PeakDb    float64 `json:"peak_db"`
}

// NewMixerClient creates a new mixing client
func NewMixerClient(cfg *config.MixerConfig) *MixerClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	return &MixerClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL:     cfg.ServiceURL,
		vocalVolume: cfg.VocalVolume,
		musicVolume: cfg.MusicVolume,
		sampleRate:  cfg.SampleRate,
	}
}

// Mix combines instrumental and vocals into a final song
func (c *MixerClient) Mix(ctx context.Context, req *MixRequest) (*MixResult, error) {
	if req.VocalVolume == 0 {
		req.VocalVolume = c.vocalVolume
	}
	if req.MusicVolume == 0 {
		req.MusicVolume = c.musicVolume
	}
	if req.SampleRate == 0 {
		req.SampleRate = c.sampleRate
	}

	var result MixResult
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/mix", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveInstrumental exports an instrumental-only track
func (c *MixerClient) SaveInstrumental(ctx context.Context, req *SaveInstrumentalRequest) (*MixResult, error) {
	if req.SampleRate == 0 {
		req.SampleRate = c.sampleRate
	}

	var result MixResult
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/instrumental/save", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *MixerClient) IsConfigured() bool {
	return c.baseURL != ""
}
