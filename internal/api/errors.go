package api

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed client-side input. It is returned before
// any network call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AuthError reports rejected credentials or a rejected bearer token.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "authentication rejected"
	}
	return e.Detail
}

// NetworkError reports a transport-level failure (connection refused, DNS,
// timeout) before any HTTP status was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx response carrying a server-supplied detail
// message.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return e.Detail
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Detail returns the server-supplied message for auth and server errors, or
// err.Error() for anything else. The TUI renders this in scoped error regions.
func Detail(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Detail
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
