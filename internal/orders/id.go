// Package orders persists confirmed order records keyed by a sanitized
// identifier.
package orders

import (
	"strings"
	"time"
)

// SanitizeID lowercases the candidate and replaces every rune outside
// [a-z0-9-_] with '-'. The result is safe as a storage key or filename.
// Re-sanitizing an already-safe id is a no-op.
func SanitizeID(candidate string) string {
	lowered := strings.ToLower(candidate)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// ChooseID selects the order identifier: an explicit existing id (change
// flow) wins over a model-suggested id, which wins over a generated
// timestamp fallback. The winner is always passed through SanitizeID.
func ChooseID(existingID, suggestedID string, now time.Time) string {
	base := strings.TrimSpace(existingID)
	if base == "" {
		base = strings.TrimSpace(suggestedID)
	}
	if base == "" {
		stamp := now.UTC().Format("2006-01-02T15:04:05.000000")
		stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
		base = "order-" + stamp
	}
	return SanitizeID(base)
}
