package crm

import (
	"errors"
	"fmt"
)

// Code classifies upsert failures for the transport layer.
type Code string

const (
	// CodeValidation rejects bad input before any remote call.
	CodeValidation Code = "validation"
	// CodeRemoteCreateFailed is a non-conflict failure on the create call.
	CodeRemoteCreateFailed Code = "remote_create_failed"
	// CodeNotFoundAfterConflict means the remote reported a duplicate but
	// the follow-up search could not locate it.
	CodeNotFoundAfterConflict Code = "not_found_after_conflict"
	// CodeRemoteUnavailable is a transport-level failure.
	CodeRemoteUnavailable Code = "remote_unavailable"
	// CodeRemoteResponseInvalid is an unparseable remote payload.
	CodeRemoteResponseInvalid Code = "remote_response_invalid"
	// CodeEngagementCreateFailed means the contact resolved but the note
	// could not be attached. Error.ContactID is set so callers can retry
	// attachment alone.
	CodeEngagementCreateFailed Code = "engagement_create_failed"
)

type Error struct {
	Code Code
	// RemoteStatus and RemoteBody carry the upstream response for
	// diagnostics when the failure came from a remote call.
	RemoteStatus int
	RemoteBody   string
	// ContactID is populated on engagement failures that happened after a
	// successful resolve.
	ContactID string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("crm: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("crm: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the taxonomy code from err, or "" if err is not a crm error.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
