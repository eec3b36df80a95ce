package llm

import "strings"

// defaultContentMarkers are strings the real reply is known to start with
// when a model first repeats its instructions: a role label, the standard
// greeting, or the first catalog bullet of a menu listing. The sanitizer
// keeps everything from the LAST marker occurrence onward.
var defaultContentMarkers = []string{
	"assistant",
	"Assistant",
	"안녕하세요",
	"- 발렌타인 디너",
	"- 프렌치 디너",
	"- 잉글리시 디너",
}

// Sanitizer removes prompt-echo artifacts from raw backend output.
//
// Smaller instruction-tuned models sometimes echo the system prompt, or
// prefix their answer with a role label. The cleanup is heuristic and
// best effort: it never fails, and sanitizing already-clean text is a
// no-op.
type Sanitizer struct {
	basePrompt string
	markers    []string
}

// NewSanitizer creates a sanitizer that recognizes basePrompt as echoed
// system-prompt text. An empty basePrompt disables echo removal.
func NewSanitizer(basePrompt string) *Sanitizer {
	return &Sanitizer{
		basePrompt: basePrompt,
		markers:    defaultContentMarkers,
	}
}

// Sanitize returns text with echo artifacts stripped and whitespace
// trimmed. Idempotent.
func (s *Sanitizer) Sanitize(raw string) string {
	cleaned := raw

	// 1. Literal system-prompt echo anywhere in the output.
	if s.basePrompt != "" {
		cleaned = strings.ReplaceAll(cleaned, s.basePrompt, "")
	}

	// 2. Cut everything before the last known content marker. Targets
	// models that restate instructions before actually answering.
	for _, marker := range s.markers {
		if idx := strings.LastIndex(cleaned, marker); idx != -1 {
			cleaned = cleaned[idx:]
			break
		}
	}

	// 3. Leading role label, with or without a colon.
	trimmed := strings.TrimSpace(cleaned)
	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "assistant:") {
		cleaned = strings.TrimSpace(trimmed[len("assistant:"):])
	} else if strings.HasPrefix(lowered, "assistant") {
		cleaned = strings.TrimLeft(trimmed[len("assistant"):], " :\n-")
	}

	return strings.TrimSpace(cleaned)
}

// ContainsConfirmation reports whether text carries the confirmation
// sentinel. The sentinel is an out-of-band marker string, so an exact
// substring check is unambiguous where natural-language intent detection
// would not be.
func ContainsConfirmation(text, sentinel string) bool {
	return sentinel != "" && strings.Contains(text, sentinel)
}

// StripConfirmation removes every occurrence of the sentinel from the text
// shown to the end user.
func StripConfirmation(text, sentinel string) string {
	if sentinel == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.ReplaceAll(text, sentinel, ""))
}
