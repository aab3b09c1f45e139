package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteSelection means a catalog load was requested without both
	// a line and a control type selected.
	ErrIncompleteSelection = errors.New("select a line and a control type first")

	// ErrStaleCatalog means a catalog load finished after the selection changed.
	ErrStaleCatalog = errors.New("catalog load superseded by a newer selection")

	// ErrStaleKey means a response key from an older catalog generation was used.
	ErrStaleKey = errors.New("response key belongs to an older catalog")

	// ErrUnknownKey means a response key or station does not address a visible row.
	ErrUnknownKey = errors.New("no such row")

	// ErrAmbiguousKey means a station/fixture pair addresses more than one row.
	ErrAmbiguousKey = errors.New("ambiguous row")

	// ErrEmptySubmission means record building produced nothing to send.
	ErrEmptySubmission = errors.New("no data to submit")
)

// Reason categorizes a validation failure.
type Reason string

const (
	// ReasonIncomplete means a required value (result or cycle count) is missing.
	ReasonIncomplete Reason = "incomplete_values"

	// ReasonMissingLine means no production line is selected.
	ReasonMissingLine Reason = "missing_line"
)

// ValidationError reports why a form cannot be submitted yet.
type ValidationError struct {
	Reason  Reason
	Message string
	// Rows lists the positions of the offending rows, if any.
	Rows []int
}

// Title is the short heading shown to the operator.
func (e *ValidationError) Title() string {
	return "incomplete fields"
}

func (e *ValidationError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("%s: %s", e.Title(), e.Message)
	}
	rows := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = fmt.Sprintf("%d", r)
	}
	return fmt.Sprintf("%s: %s (rows %s)", e.Title(), e.Message, strings.Join(rows, ", "))
}

// IsValidationError reports whether err is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationReason returns the reason of a ValidationError, or "".
func ValidationReason(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
