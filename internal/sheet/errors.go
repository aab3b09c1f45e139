package sheet

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes remote failures.
type ErrorCode string

const (
	// ErrCodeTransport means the request could not be completed: network
	// failure, cancelled context, or a non-2xx status.
	ErrCodeTransport ErrorCode = "TRANSPORT"

	// ErrCodeMalformed means the store answered with markup or non-JSON.
	ErrCodeMalformed ErrorCode = "MALFORMED_RESPONSE"

	// ErrCodeRejected means the store answered with well-formed JSON that
	// reports a failure.
	ErrCodeRejected ErrorCode = "REJECTED"
)

// RemoteError is a failed exchange with the remote store.
type RemoteError struct {
	Code ErrorCode

	// Op is the operation: "fetch specs", "submit", "fetch allowlist".
	Op string

	// Status is the HTTP status, or 0 when no response arrived.
	Status int

	// Message is a human-readable description.
	Message string

	// Snippet holds the start of the response body for diagnostics.
	Snippet string

	Err error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	return hasCode(err, ErrCodeTransport)
}

// IsMalformedError reports whether err is a markup or non-JSON response.
func IsMalformedError(err error) bool {
	return hasCode(err, ErrCodeMalformed)
}

// IsRejectedError reports whether the store reported a failure in its reply.
func IsRejectedError(err error) bool {
	return hasCode(err, ErrCodeRejected)
}

func hasCode(err error, code ErrorCode) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
