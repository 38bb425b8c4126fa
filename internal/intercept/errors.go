package intercept

import (
	"errors"
	"fmt"
)

// MisuseError reports that the harness itself is misconfigured, as opposed
// to a simulated network condition. Misuse errors must fail the test
// immediately and loudly - they are never converted to response envelopes.
type MisuseError struct {
	// Code identifies the misuse category.
	Code MisuseCode

	// Message is a human-readable description.
	Message string

	// Method and Path identify the offending call, when applicable.
	Method string
	Path   string
}

// MisuseCode categorizes harness misuse.
type MisuseCode string

const (
	// ErrCodeRouteNotRegistered indicates no route matched an intercepted
	// call. The client under test is talking to an endpoint the harness
	// does not simulate.
	ErrCodeRouteNotRegistered MisuseCode = "ROUTE_NOT_REGISTERED"
)

// Error implements the error interface.
func (e *MisuseError) Error() string {
	if e.Method != "" || e.Path != "" {
		return fmt.Sprintf("%s: %s (%s %s)", e.Code, e.Message, e.Method, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMisuse reports whether err is a harness misuse error.
// Uses errors.As to handle wrapped errors.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}

// NewRouteError creates a MisuseError for an unmatched route.
func NewRouteError(method, path string) *MisuseError {
	return &MisuseError{
		Code:    ErrCodeRouteNotRegistered,
		Message: "no registered route matches request",
		Method:  method,
		Path:    path,
	}
}
