package types

import "fmt"

// snippetLimit caps how much upstream body is carried in diagnostics.
const snippetLimit = 200

// UpstreamError wraps a failed call to a third-party collaborator:
// transport failure, non-2xx status, or an unreadable payload. The Snippet
// is a truncated piece of the upstream body kept for diagnostics.
type UpstreamError struct {
	Endpoint string
	Status   int
	Snippet  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("upstream %s: HTTP %d: %s", e.Endpoint, e.Status, e.Snippet)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Snippet truncates an upstream body for inclusion in diagnostics.
func Snippet(body []byte) string {
	if len(body) > snippetLimit {
		body = body[:snippetLimit]
	}
	return string(body)
}
