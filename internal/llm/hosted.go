package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mrdaebak/voice-order-gateway/internal/config"
)

const (
	// maxResponseSize prevents OOM on unexpectedly large API responses (10MB).
	maxResponseSize = 10 * 1024 * 1024

	// maxErrorBodyLen limits error body in error messages to avoid log bloat.
	maxErrorBodyLen = 500
)

// hostedBackend calls a hosted chat-completions API (OpenAI wire format).
type hostedBackend struct {
	cfg    config.HostedConfig
	client *http.Client
}

// NewHostedBackend creates the hosted-API backend.
func NewHostedBackend(cfg config.HostedConfig) Backend {
	return &hostedBackend{
		cfg:    cfg,
		client: &http.Client{}, // timeout via context, not client
	}
}

func (b *hostedBackend) Name() string { return "hosted" }

// chatCompletionRequest is the hosted chat-completions payload.
type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (b *hostedBackend) Generate(ctx context.Context, messages []Message, params GenParams) (string, error) {
	if b.cfg.APIKey == "" {
		return "", &ConfigurationError{Reason: "hosted backend requires llm.hosted.api_key"}
	}
	if params.Model == "" {
		return "", &ConfigurationError{Reason: "hosted backend requires a model id"}
	}

	body, err := json.Marshal(&chatCompletionRequest{
		Model:    params.Model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal hosted request: %w", err)
	}

	timeout := b.cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, params.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create hosted request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("hosted request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read hosted response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Status: resp.StatusCode, Body: truncateBody(respBody)}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse hosted response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &EmptyResponseError{Backend: "hosted"}
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncateBody(body []byte) string {
	s := string(body)
	if len(s) > maxErrorBodyLen {
		return s[:maxErrorBodyLen] + "... (truncated)"
	}
	return s
}
