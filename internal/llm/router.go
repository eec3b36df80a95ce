package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrdaebak/voice-order-gateway/internal/config"
)

// Router selects and parameterizes a backend per generation call.
//
// DESIGN: The active backend is fixed by configuration for the process
// lifetime. Exactly one backend is invoked per call; there is no fan-out
// and no cross-backend retry. Chat and summary modes may use different
// models/endpoints/sampling, resolved here from configuration.
type Router struct {
	cfg       config.LLMConfig
	backends  map[string]Backend
	sanitizer *Sanitizer
}

// NewRouter creates a router over the three built-in backends.
func NewRouter(cfg config.LLMConfig, sanitizer *Sanitizer) *Router {
	return &Router{
		cfg: cfg,
		backends: map[string]Backend{
			config.ProviderHosted: NewHostedBackend(cfg.Hosted),
			config.ProviderRemote: NewRemoteBackend(cfg.Remote),
			config.ProviderLocal:  NewLocalBackend(cfg.Local),
		},
		sanitizer: sanitizer,
	}
}

// Provider returns the active provider identifier.
func (r *Router) Provider() string { return r.cfg.Provider }

// Route generates text for the given messages with the active backend and
// returns the sanitized output. Mode selects the chat or summary parameter
// set.
func (r *Router) Route(ctx context.Context, messages []Message, mode Mode) (string, error) {
	backend, ok := r.backends[r.cfg.Provider]
	if !ok {
		return "", &ConfigurationError{Reason: fmt.Sprintf("unknown provider %q", r.cfg.Provider)}
	}

	params := r.params(mode)

	start := time.Now()
	raw, err := backend.Generate(ctx, messages, params)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("backend", backend.Name()).
		Str("mode", string(mode)).
		Str("model", params.Model).
		Dur("duration", time.Since(start)).
		Int("raw_len", len(raw)).
		Msg("generation call completed")

	return r.sanitizer.Sanitize(raw), nil
}

// params resolves the per-mode generation parameters for the active
// backend. Values are forwarded as configured; the router does not enforce
// sampling policy (summary mode is merely expected to be tuned colder).
func (r *Router) params(mode Mode) GenParams {
	switch r.cfg.Provider {
	case config.ProviderRemote:
		tuning := r.cfg.Remote.RemoteTuning
		if mode == ModeSummary {
			tuning = r.cfg.Remote.SummaryTuning()
		}
		return GenParams{
			Model:       tuning.Model,
			Endpoint:    tuning.Endpoint,
			Temperature: tuning.Temperature,
			TopP:        tuning.TopP,
			MaxTokens:   tuning.MaxTokens,
		}
	case config.ProviderLocal:
		// The fine-tuned local model uses one sampling profile for both
		// passes; it was trained on the summary format directly.
		return GenParams{
			Model:       r.cfg.Local.BaseModel,
			Temperature: r.cfg.Local.Temperature,
			TopP:        r.cfg.Local.TopP,
			MaxTokens:   r.cfg.Local.MaxNewTokens,
		}
	default: // hosted
		model := r.cfg.Hosted.ChatModel
		if mode == ModeSummary && r.cfg.Hosted.SummaryModel != "" {
			model = r.cfg.Hosted.SummaryModel
		}
		return GenParams{
			Model:    model,
			Endpoint: r.cfg.Hosted.Endpoint,
		}
	}
}
