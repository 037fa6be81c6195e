package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// NetworkError indicates a transport failure: DNS, dial, timeout or reset.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ParseError indicates a response body that does not match the expected JSON shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Errorf("parse response: %w", e.Err).Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusError indicates a non-2xx HTTP status from the catalog.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned %s", e.Status)
}

// ErrorKind labels an error for metrics and log fields.
func ErrorKind(err error) string {
	if err == nil {
		return "none"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "status"
	}
	return "other"
}
