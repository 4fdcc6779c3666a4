package api

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited covers both an upstream HTTP 429 and a denial by the
	// local limiter. Callers must not retry immediately.
	ErrRateLimited = errors.New("coingecko: rate limited")

	// ErrUnauthorized is returned on HTTP 401/403. Not retryable; the user
	// needs to check their API key.
	ErrUnauthorized = errors.New("coingecko: unauthorized, check API key")
)

// StatusError is returned for any other non-200 upstream response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coingecko: %s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// UnreachableError wraps a transport-level failure (DNS, connection,
// timeout) so callers can distinguish "the network is down" from an API
// error.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("coingecko: %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}
