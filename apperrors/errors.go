// Package apperrors defines the closed set of failures the drug knowledge
// client reports to its callers.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any NotFoundError through errors.Is.
var ErrNotFound = errors.New("drug not found")

// Kind names used in logs and metric labels.
const (
	KindInput         = "input"
	KindConfiguration = "configuration"
	KindTransport     = "transport"
	KindUpstream      = "upstream"
	KindProtocol      = "protocol"
	KindValidation    = "validation"
	KindNotFound      = "not_found"
	KindUnknown       = "unknown"
)

// InputError rejects caller arguments before any network call.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError means the client cannot talk to the provider at all,
// typically because no credential is configured. It is never retryable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "provider not configured: " + e.Reason
}

// TransportError wraps connectivity failures, timeouts and cancellations.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// UpstreamError is a non-2xx answer from the provider.
type UpstreamError struct {
	StatusCode      int
	ProviderMessage string
}

func (e *UpstreamError) Error() string {
	if e.ProviderMessage == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.ProviderMessage)
}

// ProtocolError is a 2xx answer without the expected message envelope.
// Raw holds the (truncated) body for diagnosis.
type ProtocolError struct {
	Raw string
}

func (e *ProtocolError) Error() string {
	return "malformed provider envelope"
}

// ValidationKind tells why a payload was rejected.
type ValidationKind int

const (
	MalformedJSON ValidationKind = iota + 1
	ShapeMismatch
)

func (k ValidationKind) String() string {
	switch k {
	case MalformedJSON:
		return "MalformedJson"
	case ShapeMismatch:
		return "ShapeMismatch"
	}
	return "Unknown"
}

// ValidationError means a payload was present but could not be trusted.
type ValidationError struct {
	Kind    ValidationKind
	Detail  string
	Snippet string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid provider payload (%s): %s", e.Kind, e.Detail)
}

// NotFoundError is a well-formed but empty lookup result.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no information found for %q", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Classify returns the kind of err, KindUnknown for foreign errors.
func Classify(err error) string {
	var (
		inputErr      *InputError
		configErr     *ConfigurationError
		transportErr  *TransportError
		upstreamErr   *UpstreamError
		protocolErr   *ProtocolError
		validationErr *ValidationError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &inputErr):
		return KindInput
	case errors.As(err, &configErr):
		return KindConfiguration
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &upstreamErr):
		return KindUpstream
	case errors.As(err, &protocolErr):
		return KindProtocol
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	return KindUnknown
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…"
}
