package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mrdaebak/voice-order-gateway/internal/config"
)

// remoteTimeout is the hard deadline for remote inference-endpoint calls.
const remoteTimeout = 60 * time.Second

// remoteBackend posts to an arbitrary inference endpoint. Endpoint
// implementations vary (chat-completions routers, TGI, custom vLLM
// frontends), so the response is probed under several known JSON shapes
// instead of being bound to one schema.
type remoteBackend struct {
	token  string
	client *http.Client
}

// NewRemoteBackend creates the remote-endpoint backend.
func NewRemoteBackend(cfg config.RemoteConfig) Backend {
	return &remoteBackend{
		token:  cfg.Token,
		client: &http.Client{},
	}
}

func (b *remoteBackend) Name() string { return "remote" }

// remoteRequest is the payload every supported endpoint understands.
type remoteRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
}

func (b *remoteBackend) Generate(ctx context.Context, messages []Message, params GenParams) (string, error) {
	if params.Endpoint == "" {
		return "", &ConfigurationError{Reason: "remote backend requires llm.remote.endpoint"}
	}
	if params.Model == "" {
		return "", &ConfigurationError{Reason: "remote backend requires llm.remote.model"}
	}

	body, err := json.Marshal(&remoteRequest{
		Model:       params.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal remote request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, params.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create remote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read remote response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: truncateBody(respBody)}
	}

	return extractRemoteContent(respBody), nil
}

// extractRemoteContent probes the response under the known shapes, in
// priority order. An unrecognized shape yields "" rather than an error; the
// router treats empty sanitized output the same as any other blank reply.
func extractRemoteContent(body []byte) string {
	for _, path := range []string{"choices.0.message.content", "generated_text", "text"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
