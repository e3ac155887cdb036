package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/raphaelgruber/docchat/internal/models"
)

// TTSClient calls an Azure OpenAI TTS deployment.
type TTSClient struct {
	endpoint   string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

// NewTTSClient creates a synthesis client.
// A timeout of 0 uses DefaultTimeout.
func NewTTSClient(endpoint, apiKey, apiVersion string, timeout time.Duration) *TTSClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &TTSClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ttsRequest is the synthesis payload.
type ttsRequest struct {
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Synthesize converts text to raw audio bytes using the selected voice.
// Non-2xx responses return the diagnostic body wrapped in ErrSynthesis.
func (c *TTSClient) Synthesize(ctx context.Context, text string, voice models.Voice) ([]byte, error) {
	payload, err := json.Marshal(ttsRequest{Input: text, Voice: string(voice)})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrSynthesis, err)
	}

	url := fmt.Sprintf("%s?api-version=%s", c.endpoint, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrSynthesis, err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSynthesis, err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("synthesis request rejected", "status", resp.Status, "voice", voice, "detail", string(body))
		return nil, fmt.Errorf("%w: %s - %s", ErrSynthesis, resp.Status, string(body))
	}

	return body, nil
}
