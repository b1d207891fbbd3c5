package scraper

import (
	"errors"
	"fmt"
	"time"
)

// APIError is a non-2xx response from a provider.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// RateLimitError reports a provider quota denial, local or remote.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ParseError is a malformed or unexpected provider response.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// ConfigError reports an unsupported operation or a misconfigured provider.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NetworkError wraps a transport-level failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no provider produced a result for a query.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no results found for %q", e.Query)
}

// Sentinel errors raised by the ingestion pipeline after a search
// completes.
var (
	// ErrNoMatchingResults means a search succeeded but no result had
	// the media type the caller asked for.
	ErrNoMatchingResults = errors.New("no results matching the requested media type")

	// ErrUnsupportedMediaType means the fetched details cannot be
	// stored for the item's library kind.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRateLimit reports whether err is a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsConfig reports whether err is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
