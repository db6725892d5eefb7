package domain

import "fmt"

// OrderError reports an invalid operation against the order queue:
// unknown order id, out-of-range candidate index, or a missing song or
// chart. It surfaces as a failed command at the registry boundary and
// never crashes the server.
type OrderError struct {
	Reason string
}

func (e *OrderError) Error() string { return e.Reason }

// NewOrderError builds an OrderError from a format string.
func NewOrderError(format string, args ...any) *OrderError {
	return &OrderError{Reason: fmt.Sprintf(format, args...)}
}

// ParseError reports a chat line that is not a recognized command:
// unknown prefix, missing or non-numeric arguments, or a display index
// outside the live queue. Chat-originated parse errors are logged and
// dropped, never answered.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

// NewParseError builds a ParseError from a format string.
func NewParseError(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}
