package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/auroradesk/aurora/pkg/Logger"
)

// TranscriptionResult is the voice service's reading of an audio clip.
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
	IsFinal    bool    `json:"is_final"`
}

// SynthesisResult carries synthesized speech back to the caller.
type SynthesisResult struct {
	AudioData    string  `json:"audio_data"` // base64 encoded
	Format       string  `json:"format"`
	DurationSecs float64 `json:"duration"`
}

// HealthStatus mirrors the voice service health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
	Models struct {
		STT bool `json:"stt"`
		TTS bool `json:"tts"`
	} `json:"models"`
}

type transcribeRequest struct {
	AudioData string `json:"audio_data"` // base64 encoded
	Language  string `json:"language,omitempty"`
}

type synthesizeRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// Client talks to the standalone voice service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *Logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Health checks the voice service and its loaded models.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var status HealthStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Transcribe sends base64-encoded audio for speech to text.
func (c *Client) Transcribe(ctx context.Context, audioData, language string) (*TranscriptionResult, error) {
	if audioData == "" {
		return nil, fmt.Errorf("no audio data provided")
	}

	req, err := c.jsonRequest(ctx, "/v1/transcribe", transcribeRequest{
		AudioData: audioData,
		Language:  language,
	})
	if err != nil {
		return nil, err
	}

	var result TranscriptionResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	c.logger.Debugf("Transcription: %q (confidence %.2f)", result.Text, result.Confidence)
	return &result, nil
}

// Synthesize converts text to speech.
func (c *Client) Synthesize(ctx context.Context, text, voiceName string, speed float64) (*SynthesisResult, error) {
	if text == "" {
		return nil, fmt.Errorf("no text provided")
	}

	req, err := c.jsonRequest(ctx, "/v1/synthesize", synthesizeRequest{
		Text:  text,
		Voice: voiceName,
		Speed: speed,
	})
	if err != nil {
		return nil, err
	}

	var result SynthesisResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) jsonRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("voice service request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorf("Voice service error (status %d): %s", resp.StatusCode, string(responseBody))
		return fmt.Errorf("voice service returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
