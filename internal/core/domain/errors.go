package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable wraps transport failures talking to the API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedResponse wraps bodies that could not be decoded.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrSessionRejected marks a token the server no longer accepts.
	ErrSessionRejected = errors.New("session rejected")
	// ErrUnknownCommand is returned for commands missing from the dispatch table.
	ErrUnknownCommand = errors.New("unknown command")
)

// APIError is a non-2xx answer from the activities API. Detail holds the
// body's "detail" field when it was a string.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Detail)
}

// DetailOf returns the server-reported detail of err, or fallback when err is
// not an APIError or carries no detail.
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
