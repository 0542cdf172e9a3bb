package models

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when fewer than the required number of
// ranked coins are available for averaging. Silently truncating would skew
// the price-severity mean, so this is an explicit failure.
var ErrInsufficientData = errors.New("insufficient market data")

// UpstreamError 上游接口调用失败
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError wraps a provider failure with its origin.
func NewUpstreamError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Err: err}
}

// ValidationError malformed entity construction; fails fast, never partial.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError unknown route or unknown ticker symbol.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}
