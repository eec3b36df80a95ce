// Package llm routes text generation across interchangeable backends and
// cleans their output.
//
// DESIGN: Request handling follows this flow:
//  1. The caller assembles the message history (system prompt first).
//  2. Router picks the configured backend and per-mode parameters.
//  3. The backend performs exactly one generation call.
//  4. The sanitizer strips prompt-echo artifacts from the raw output.
//
// Backends are stateless from the router's point of view; the local
// backend's one-time model load is an internal detail.
package llm

import "context"

// Message roles in the chat wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

// Mode selects the parameter set for a generation call.
type Mode string

const (
	// ModeChat generates the assistant's next conversational reply.
	ModeChat Mode = "chat"
	// ModeSummary runs the colder, format-constrained extraction pass.
	ModeSummary Mode = "summary"
)

// GenParams are the resolved parameters for one generation call.
type GenParams struct {
	Model       string
	Endpoint    string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Backend generates text for a message history. Implementations return raw
// model output; sanitization happens in the router.
type Backend interface {
	Name() string
	Generate(ctx context.Context, messages []Message, params GenParams) (string, error)
}
