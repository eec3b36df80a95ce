// Package stt transcribes customer audio through a hosted
// speech-to-text API (OpenAI-compatible transcription endpoint).
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/mrdaebak/voice-order-gateway/internal/llm"
)

// DefaultEndpoint is the stock transcription endpoint.
const DefaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"

const transcribeTimeout = 60 * time.Second

// Client calls the transcription API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewClient creates a transcription client. endpoint may be empty for the
// default.
func NewClient(apiKey, model, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

// ShortLanguageCode reduces a BCP-47 tag to the bare language code the
// transcription API expects ("ko-KR" → "ko"). Empty input stays empty.
func ShortLanguageCode(language string) string {
	lang := strings.TrimSpace(language)
	if lang == "" {
		return ""
	}
	lang = strings.SplitN(lang, "-", 2)[0]
	return strings.SplitN(lang, "_", 2)[0]
}

// Transcribe sends the audio bytes and returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	if c.apiKey == "" {
		return "", &llm.ConfigurationError{Reason: "transcription requires llm.hosted.api_key"}
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename == "" {
		filename = "audio.webm"
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	_ = writer.WriteField("model", c.model)
	if code := ShortLanguageCode(language); code != "" {
		_ = writer.WriteField("language", code)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &llm.UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return "", &llm.EmptyResponseError{Backend: "stt"}
	}
	return parsed.Text, nil
}
