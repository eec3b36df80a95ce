// LLM backend routing configuration.
//
// DESIGN: One backend is active per process, selected by llm.provider.
// Chat and summary generation can be tuned independently; summary settings
// fall back to the chat settings when left empty, mirroring how operators
// usually run the same model for both passes.
package config

import (
	"fmt"
	"time"
)

// Provider identifiers accepted in llm.provider.
const (
	ProviderHosted = "hosted"
	ProviderRemote = "remote"
	ProviderLocal  = "local"
)

// DefaultHostedEndpoint is the stock chat-completions endpoint used when
// llm.hosted.endpoint is empty.
const DefaultHostedEndpoint = "https://api.openai.com/v1/chat/completions"

// DefaultRemoteEndpoint is the stock inference-router endpoint used when
// llm.remote.endpoint is empty.
const DefaultRemoteEndpoint = "https://router.huggingface.co/v1/chat/completions"

// LLMConfig selects and parameterizes the generation backends.
type LLMConfig struct {
	Provider string `yaml:"provider"` // hosted | remote | local

	Hosted HostedConfig `yaml:"hosted"`
	Remote RemoteConfig `yaml:"remote"`
	Local  LocalConfig  `yaml:"local"`

	// ContextWindow is the token budget used for prompt-size accounting.
	// Prompts over this count are logged, not rejected.
	ContextWindow int `yaml:"context_window"`
}

// HostedConfig configures the hosted chat-completions backend.
type HostedConfig struct {
	APIKey       string        `yaml:"api_key"`
	Endpoint     string        `yaml:"endpoint"`      // Empty → DefaultHostedEndpoint
	ChatModel    string        `yaml:"chat_model"`    // Primary conversational model
	SummaryModel string        `yaml:"summary_model"` // Empty → ChatModel
	Timeout      time.Duration `yaml:"timeout"`       // Hard deadline per call
}

// RemoteTuning is one parameter set for the remote endpoint.
type RemoteTuning struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// RemoteConfig configures the remote inference-endpoint backend.
type RemoteConfig struct {
	RemoteTuning `yaml:",inline"`

	Token string `yaml:"token"` // Optional bearer token

	// Summary overrides the inline chat tuning for summary mode. Empty
	// fields fall back to the chat values field by field.
	Summary RemoteTuning `yaml:"summary"`
}

// SummaryTuning returns the effective parameter set for summary mode.
func (r RemoteConfig) SummaryTuning() RemoteTuning {
	tuned := r.Summary
	if tuned.Endpoint == "" {
		tuned.Endpoint = r.Endpoint
	}
	if tuned.Model == "" {
		tuned.Model = r.Model
	}
	if tuned.Temperature == 0 {
		tuned.Temperature = r.Temperature
	}
	if tuned.TopP == 0 {
		tuned.TopP = r.TopP
	}
	if tuned.MaxTokens == 0 {
		tuned.MaxTokens = r.MaxTokens
	}
	return tuned
}

// LocalConfig configures the local-weights backend. The runtime is an
// Ollama-compatible inference server reachable over localhost.
type LocalConfig struct {
	RuntimeURL  string  `yaml:"runtime_url"`  // e.g. http://127.0.0.1:11434
	BaseModel   string  `yaml:"base_model"`   // Base model id known to the runtime
	AdapterPath string  `yaml:"adapter_path"` // LoRA adapter overlay path
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxNewTokens int    `yaml:"max_new_tokens"`
}

func (l *LLMConfig) applyDefaults() {
	if l.Provider == "" {
		l.Provider = ProviderHosted
	}
	if l.Hosted.Endpoint == "" {
		l.Hosted.Endpoint = DefaultHostedEndpoint
	}
	if l.Hosted.ChatModel == "" {
		l.Hosted.ChatModel = "gpt-4o-mini"
	}
	if l.Hosted.Timeout == 0 {
		l.Hosted.Timeout = 60 * time.Second
	}
	if l.Remote.Endpoint == "" {
		l.Remote.Endpoint = DefaultRemoteEndpoint
	}
	if l.Remote.Temperature == 0 {
		l.Remote.Temperature = 0.6
	}
	if l.Remote.TopP == 0 {
		l.Remote.TopP = 0.9
	}
	if l.Remote.MaxTokens == 0 {
		l.Remote.MaxTokens = 256
	}
	if l.Remote.Summary.Temperature == 0 {
		l.Remote.Summary.Temperature = 0.1
	}
	if l.Remote.Summary.TopP == 0 {
		l.Remote.Summary.TopP = 0.95
	}
	if l.Remote.Summary.MaxTokens == 0 {
		l.Remote.Summary.MaxTokens = 512
	}
	if l.Local.RuntimeURL == "" {
		l.Local.RuntimeURL = "http://127.0.0.1:11434"
	}
	if l.Local.Temperature == 0 {
		l.Local.Temperature = 0.6
	}
	if l.Local.TopP == 0 {
		l.Local.TopP = 0.9
	}
	if l.Local.MaxNewTokens == 0 {
		l.Local.MaxNewTokens = 256
	}
	if l.ContextWindow == 0 {
		l.ContextWindow = 8192
	}
}

// Validate checks backend selection. Per-backend credentials are checked by
// the router at call time so a misconfigured inactive backend does not block
// startup.
func (l LLMConfig) Validate() error {
	switch l.Provider {
	case ProviderHosted, ProviderRemote, ProviderLocal:
		return nil
	default:
		return fmt.Errorf("unknown llm.provider: %q (must be hosted, remote, or local)", l.Provider)
	}
}
