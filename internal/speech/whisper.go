// Package speech provides HTTP clients for the Azure OpenAI speech
// services: Whisper transcription and TTS synthesis.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultTimeout bounds every speech service call. No mid-flight
// cancellation beyond the context deadline.
const DefaultTimeout = 60 * time.Second

// WhisperClient calls an Azure OpenAI Whisper deployment.
type WhisperClient struct {
	endpoint   string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

// NewWhisperClient creates a transcription client.
// A timeout of 0 uses DefaultTimeout.
func NewWhisperClient(endpoint, apiKey, apiVersion string, timeout time.Duration) *WhisperClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &WhisperClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// whisperResponse is the transcription payload. Verbose responses carry
// segments; the simple format carries only the full text.
type whisperResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments,omitempty"`
}

// Transcribe uploads the audio file at path and returns the transcribed
// text segments. Failures and non-2xx responses are wrapped in
// ErrTranscription.
func (c *WhisperClient) Transcribe(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open audio: %v", ErrTranscription, err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTranscription, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrTranscription, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTranscription, err)
	}

	url := fmt.Sprintf("%s?api-version=%s", c.endpoint, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTranscription, err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTranscription, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s - %s", ErrTranscription, resp.Status, string(respBody))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}

	if len(parsed.Segments) > 0 {
		segments := make([]string, len(parsed.Segments))
		for i, s := range parsed.Segments {
			segments[i] = s.Text
		}
		return segments, nil
	}
	if parsed.Text == "" {
		return nil, fmt.Errorf("%w: empty transcription result", ErrTranscription)
	}
	return []string{parsed.Text}, nil
}
