// Package upstream carries the shared error taxonomy for third-party API
// calls. Gateways map raw HTTP outcomes into *Error values; the retry
// executor and handlers branch on Kind instead of re-parsing status codes.
package upstream

import (
	"fmt"
	"strings"
)

// Provider names used in user-facing credential errors.
const (
	ProviderQloo   = "qloo"
	ProviderOpenAI = "openai"
)

type Kind int

const (
	// KindTransient covers 5xx responses and network-level failures;
	// retried with backoff, then replaced by deterministic synthesis where
	// the orchestrator supports it.
	KindTransient Kind = iota
	// KindRateLimited covers 429; retried with backoff, then surfaced as a
	// hard failure, never replaced by synthesis.
	KindRateLimited
	// KindInvalidPayload covers 400. Never retried.
	KindInvalidPayload
	// KindCredential covers 401. Never retried; surfaced with a message
	// naming the provider.
	KindCredential
	// KindForbidden covers 403. Never retried.
	KindForbidden
	// KindNotFound covers 404. Never retried.
	KindNotFound
	// KindClient covers any other 4xx. Never retried.
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindCredential:
		return "credential"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "client"
	}
}

// Retryable reports whether another attempt may succeed.
func (k Kind) Retryable() bool {
	return k == KindTransient || k == KindRateLimited
}

type Error struct {
	Provider   string
	StatusCode int
	Kind       Kind
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// Classify maps a non-2xx HTTP status into a typed error.
func Classify(provider string, status int, message string) *Error {
	e := &Error{Provider: provider, StatusCode: status, Message: message}
	switch {
	case status == 429:
		e.Kind = KindRateLimited
	case status == 400:
		e.Kind = KindInvalidPayload
	case status == 401:
		e.Kind = KindCredential
	case status == 403:
		e.Kind = KindForbidden
	case status == 404:
		e.Kind = KindNotFound
	case status >= 400 && status < 500:
		e.Kind = KindClient
	default:
		e.Kind = KindTransient
	}
	return e
}

// ClassifyNetwork maps a transport-level failure (no HTTP response). These
// are retried like 5xx, except errors whose text points at a credential or
// client problem, which are surfaced immediately.
func ClassifyNetwork(provider string, err error) *Error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "credential"):
		return &Error{Provider: provider, Kind: KindCredential, Message: msg}
	case strings.Contains(lower, "bad request") || strings.Contains(lower, "invalid request"):
		return &Error{Provider: provider, Kind: KindInvalidPayload, Message: msg}
	default:
		return &Error{Provider: provider, Kind: KindTransient, Message: msg}
	}
}
