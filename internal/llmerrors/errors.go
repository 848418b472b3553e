// Package llmerrors defines the closed error taxonomy carried across the
// router boundary, per spec §7.
package llmerrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidRequest  Kind = "invalid_request"
	KindNoProvider      Kind = "no_provider"
	KindNoAuth          Kind = "no_auth"
	KindAuth            Kind = "auth"
	KindProvider        Kind = "provider"
	KindTransport       Kind = "transport"
	KindTransform       Kind = "transform_error"
	KindUnsupported     Kind = "unsupported"
)

// TransformKind distinguishes the sub-cases of a KindTransform error.
type TransformKind string

const (
	TransformUnableToDetectFormat TransformKind = "unable_to_detect_format"
	TransformValidationFailed     TransformKind = "validation_failed"
	TransformToUniversal          TransformKind = "to_universal_failed"
	TransformFromUniversal        TransformKind = "from_universal_failed"
)

// Error is the single error type surfaced at the router boundary. Exactly
// one Kind-specific field set is populated per Kind.
type Error struct {
	Kind Kind

	// Message is a human-readable summary, always set.
	Message string

	// NoProvider / NoAuth
	Alias string

	// Provider
	Provider    string
	RetryAfterS int // 0 means "not retryable by time", see Retryable()
	HasRetryAfter bool
	HTTPStatus  int
	UpstreamBody    string
	UpstreamHeaders map[string][]string

	// Transform
	TransformKind TransformKind
	TargetFormat  string

	// Unsupported
	Feature string

	// Wrapped is the underlying cause, if any.
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Retryable reports whether the router's retry loop should consider
// retrying this error per spec §7's retryability column.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindProvider:
		return e.HasRetryAfter || e.HTTPStatus == 429 || e.HTTPStatus >= 500
	default:
		return false
	}
}

func InvalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func NoProvider(format string) *Error {
	return &Error{Kind: KindNoProvider, Alias: format, Message: fmt.Sprintf("no provider registered for format %q", format)}
}

func NoAuth(alias string) *Error {
	return &Error{Kind: KindNoAuth, Alias: alias, Message: fmt.Sprintf("no auth configured for provider %q", alias)}
}

func Auth(cause error) *Error {
	return &Error{Kind: KindAuth, Message: "authentication failed", Wrapped: cause}
}

// ProviderErr builds a Provider-kind error carrying upstream HTTP context.
// retryAfter is the floor computed per spec §4.5/§4.9 (2s for 429/5xx,
// absent otherwise).
func ProviderErr(provider string, status int, body string, headers map[string][]string, retryAfterSeconds int, hasRetryAfter bool) *Error {
	return &Error{
		Kind:            KindProvider,
		Provider:        provider,
		HTTPStatus:      status,
		UpstreamBody:    body,
		UpstreamHeaders: headers,
		RetryAfterS:     retryAfterSeconds,
		HasRetryAfter:   hasRetryAfter,
		Message:         fmt.Sprintf("provider %q returned status %d", provider, status),
	}
}

func Transport(cause error) *Error {
	return &Error{Kind: KindTransport, Message: "transport error", Wrapped: cause}
}

func TransformErr(kind TransformKind, targetFormat string, cause error) *Error {
	e := &Error{
		Kind:          KindTransform,
		TransformKind: kind,
		TargetFormat:  targetFormat,
		Message:       fmt.Sprintf("%s (target=%s)", kind, targetFormat),
		Wrapped:       cause,
	}
	if cause != nil {
		e.Message = fmt.Sprintf("%s (target=%s): %v", kind, targetFormat, cause)
	}

	return e
}

func Unsupported(feature string) *Error {
	return &Error{Kind: KindUnsupported, Feature: feature, Message: fmt.Sprintf("unsupported: %s", feature)}
}

// As is a convenience wrapper over errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error

	ok := errors.As(err, &e)

	return e, ok
}
