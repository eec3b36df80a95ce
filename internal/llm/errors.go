package llm

import "fmt"

// ConfigurationError reports a backend invoked without the settings or
// credentials it needs. Raised at call time, not startup, so an inactive
// misconfigured backend never blocks the service.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// DependencyUnavailableError reports that the local inference runtime could
// not be reached.
type DependencyUnavailableError struct {
	Runtime string
	Err     error
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("inference runtime %s unavailable: %v", e.Runtime, e.Err)
}

func (e *DependencyUnavailableError) Unwrap() error { return e.Err }

// UpstreamError reports a non-success HTTP status from a generation or
// transcription API. Body is truncated before storage.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// EmptyResponseError reports a successful call whose payload carried no
// usable text.
type EmptyResponseError struct {
	Backend string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s backend returned an empty response", e.Backend)
}

// EmptySummaryError reports that the summary pass produced no parseable
// text, so no order can be materialized.
type EmptySummaryError struct{}

func (e *EmptySummaryError) Error() string {
	return "summary generation produced empty output"
}
