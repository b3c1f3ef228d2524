package porkbun

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindTransient covers server errors, malformed responses and network
	// failures. Retried naturally on the next cycle.
	KindTransient ErrorKind = iota
	// KindUnauthorized means the API rejected the credentials. Recoverable
	// only by operator action, but never fatal to the process.
	KindUnauthorized
	// KindRateLimited means the API asked us to back off.
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "transient"
	}
}

// APIError is any failed exchange with the Porkbun API, classified so callers
// can choose logging severity without string matching.
type APIError struct {
	Kind    ErrorKind
	Op      string // "retrieve" or "edit"
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("porkbun %s: %s: %s", e.Op, e.Kind, e.Message)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindRateLimited
}
