package gate

import (
	"errors"
	"fmt"
)

// ErrForbidden is the sentinel every authorization denial matches via
// errors.Is.
var ErrForbidden = errors.New("gate: access denied")

// DeniedError describes an authorization denial.
type DeniedError struct {
	// Subject is the user that was denied, if known.
	Subject string

	// Gate names the gate that denied the request.
	Gate string

	// Reason explains why access was denied.
	Reason string
}

// Error returns the error message.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: subject=%q gate=%q reason=%q", e.Subject, e.Gate, e.Reason)
}

// Is reports whether this error matches the target.
func (e *DeniedError) Is(target error) bool {
	return target == ErrForbidden
}

// User-facing failure messages written in the response envelope. The
// internal cause is logged, never leaked to the client.
const (
	MsgLoginRequired    = "Please log in."
	MsgValidationFailed = "Error on session validation, please try again."
	MsgSessionExpired   = "Your session has expired, please log in again."
	MsgForbidden        = "You do not have permission to access this resource."
	MsgInternalError    = "Internal server error."
)
