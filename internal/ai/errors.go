package ai

import "fmt"

// UpstreamError reports a non-2xx response from the generative backend.
// Body carries the raw response so callers can log the upstream reason.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generative api status %d: %s", e.Status, e.Body)
}

// MalformedResponseError reports a response that parsed as a transport
// envelope but carried no usable candidate, content part, or embedding.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed generative response: " + e.Reason
}
