package client

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when a call requiring a session is
	// made without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRefundExceedsPayment is returned before any request is made when a
	// refund amount is larger than the payment it targets.
	ErrRefundExceedsPayment = errors.New("Refund amount cannot exceed payment amount")
)

// APIError is a non-2xx response from the backend. Message carries the
// body's message field when present; Errors carries the per-field
// validation map when the backend sent one.
type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		keys := make([]string, 0, len(e.Errors))
		for k := range e.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, e.Errors[k])
		}
		return strings.Join(lines, "\n")
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}
