package hubspot

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// The remote's conflict body is not guaranteed to be JSON; Message is
// best-effort, Body is always the raw payload.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "hubspot: <nil error>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("hubspot http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// IsConflict reports whether err is the remote's duplicate-email signal.
func IsConflict(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusConflict
}

// DecodeError marks a 2xx response whose payload could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "hubspot: <nil decode error>"
	}
	return fmt.Sprintf("hubspot: decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
