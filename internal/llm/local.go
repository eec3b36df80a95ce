package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mrdaebak/voice-order-gateway/internal/config"
)

// localBackend serves the fine-tuned weights through a local
// Ollama-compatible inference runtime. The base model plus LoRA adapter are
// registered with the runtime exactly once per process; registration takes
// multiple seconds, so concurrent first callers must block on the same load
// instead of each starting their own.
type localBackend struct {
	cfg    config.LocalConfig
	client *http.Client

	// mu guards the one-time model load. Double-checked: reads take the
	// fast RLock path once loadedModel is set, the first caller takes the
	// write lock for the load itself.
	mu          sync.RWMutex
	loadedModel string
}

// NewLocalBackend creates the local-weights backend. The model is not
// loaded until the first Generate call.
func NewLocalBackend(cfg config.LocalConfig) Backend {
	return &localBackend{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (b *localBackend) Name() string { return "local" }

func (b *localBackend) Generate(ctx context.Context, messages []Message, params GenParams) (string, error) {
	model, err := b.ensureLoaded(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
		"options": map[string]any{
			"temperature": params.Temperature,
			"top_p":       params.TopP,
			"num_predict": params.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal local request: %w", err)
	}

	respBody, err := b.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse local response: %w", err)
	}
	if strings.TrimSpace(parsed.Message.Content) == "" {
		return "", &EmptyResponseError{Backend: "local"}
	}
	return parsed.Message.Content, nil
}

// ensureLoaded registers the base model + adapter overlay with the runtime
// on the first call and returns the overlay model name.
func (b *localBackend) ensureLoaded(ctx context.Context) (string, error) {
	b.mu.RLock()
	model := b.loadedModel
	b.mu.RUnlock()
	if model != "" {
		return model, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Another caller may have finished the load while we waited.
	if b.loadedModel != "" {
		return b.loadedModel, nil
	}

	if b.cfg.BaseModel == "" || b.cfg.AdapterPath == "" {
		return "", &ConfigurationError{Reason: "local backend requires llm.local.base_model and llm.local.adapter_path"}
	}

	if err := b.probeRuntime(ctx); err != nil {
		return "", &DependencyUnavailableError{Runtime: b.cfg.RuntimeURL, Err: err}
	}

	overlay := overlayModelName(b.cfg.BaseModel)
	modelfile := fmt.Sprintf("FROM %s\nADAPTER %s\n", b.cfg.BaseModel, b.cfg.AdapterPath)
	payload, err := json.Marshal(map[string]any{
		"name":      overlay,
		"modelfile": modelfile,
		"stream":    false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal model create request: %w", err)
	}

	if _, err := b.post(ctx, "/api/create", payload); err != nil {
		return "", fmt.Errorf("failed to register local model: %w", err)
	}

	b.loadedModel = overlay
	return overlay, nil
}

// probeRuntime checks that the inference runtime is reachable at all, so a
// missing runtime surfaces as a dependency error rather than a generic
// connection failure from the load call.
func (b *localBackend) probeRuntime(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.RuntimeURL+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("runtime returned status %d", resp.StatusCode)
	}
	return nil
}

func (b *localBackend) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.RuntimeURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create local request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &DependencyUnavailableError{Runtime: b.cfg.RuntimeURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read local response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: truncateBody(respBody)}
	}
	return respBody, nil
}

// overlayModelName derives a runtime-legal name for the adapter overlay.
func overlayModelName(base string) string {
	name := strings.ToLower(base)
	name = strings.NewReplacer("/", "-", ":", "-", ".", "-").Replace(name)
	return name + "-voice-order"
}
