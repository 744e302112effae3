package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies an API failure for the caller-facing error policy.
type Kind string

const (
	// KindAuth means the session token is missing, expired or rejected.
	KindAuth Kind = "auth"
	// KindConflict means the action is no longer valid server-side.
	KindConflict Kind = "conflict"
	// KindValidation means the request was rejected as malformed.
	KindValidation Kind = "validation"
	// KindNotFound means the resource or endpoint does not exist.
	KindNotFound Kind = "not_found"
	// KindNetwork means the request never produced a usable response.
	KindNetwork Kind = "network"
	// KindServer means the server failed with a 5xx.
	KindServer Kind = "server"
)

// APIError is the single error type all surfaces return for failed calls.
type APIError struct {
	Kind      Kind
	Status    int
	Message   string
	Retryable bool
	cause     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api %s error: status=%d message=%s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return IsKind(err, KindAuth) }

// IsConflict reports whether err means the action is no longer valid.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsNotFound reports whether err is a missing resource or route.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsRetryable reports whether the call may be retried as-is.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable
}
