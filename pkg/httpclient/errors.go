package httpclient

import (
	"fmt"
	"strings"
)

const maxErrorBodyBytes = 512

// ConfigurationError reports an unusable client configuration. It is returned
// by New before any network activity takes place.
type ConfigurationError struct {
	URL    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.URL == "" {
		return "upgates: invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("upgates: invalid configuration: %s (api url %q)", e.Reason, e.URL)
}

// TransportError wraps every failure of a single request: non-2xx responses,
// network errors, cancelled contexts and undecodable bodies.
// StatusCode is zero when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "upgates: %s %s", e.Method, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if snippet := bodySnippet(e.Body); snippet != "" {
		fmt.Fprintf(&b, ": %s", snippet)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}
