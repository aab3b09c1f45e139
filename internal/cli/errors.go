package cli

import (
	"errors"

	"github.com/roach88/qcform/internal/access"
	"github.com/roach88/qcform/internal/catalog"
	"github.com/roach88/qcform/internal/form"
	"github.com/roach88/qcform/internal/sheet"
)

// Output error codes.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeUsage      = "E002" // Bad flag or argument
	ErrCodeValidation = "E101" // Incomplete or invalid form input
	ErrCodeEmpty      = "E102" // Nothing to submit
	ErrCodeSchema     = "E103" // Specification payload failed the schema check
	ErrCodeTransport  = "E201" // Remote unreachable or non-success status
	ErrCodeMalformed  = "E202" // Remote answered with markup or invalid JSON
	ErrCodeRejected   = "E203" // Remote reported an application error
	ErrCodeAccess     = "E301" // Identity refused by the gate
	ErrCodeConfig     = "E401" // Configuration could not be loaded
	ErrCodeStore      = "E402" // Local sheet database failure
)

// classify maps an operation error to an output code and exit code.
func classify(err error) (string, int) {
	var inputErr *form.InputError
	var schemaErr *catalog.SchemaError
	switch {
	case errors.Is(err, catalog.ErrUnknownControlType), errors.Is(err, errReadings):
		return ErrCodeUsage, ExitCommandError
	case form.IsValidationError(err), errors.As(err, &inputErr),
		errors.Is(err, form.ErrUnknownKey), errors.Is(err, form.ErrAmbiguousKey),
		errors.Is(err, form.ErrIncompleteSelection):
		return ErrCodeValidation, ExitFailure
	case errors.Is(err, form.ErrEmptySubmission):
		return ErrCodeEmpty, ExitFailure
	case sheet.IsMalformedError(err):
		return ErrCodeMalformed, ExitFailure
	case sheet.IsRejectedError(err):
		return ErrCodeRejected, ExitFailure
	case sheet.IsTransportError(err):
		return ErrCodeTransport, ExitFailure
	case errors.As(err, &schemaErr):
		return ErrCodeSchema, ExitFailure
	case errors.Is(err, access.ErrEmptyIdentity), errors.Is(err, access.ErrMalformedAddress),
		errors.Is(err, access.ErrForeignDomain), errors.Is(err, access.ErrNotAllowed):
		return ErrCodeAccess, ExitFailure
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// fail writes err through the formatter and returns the matching ExitError.
func fail(f *OutputFormatter, message string, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, message+": "+err.Error(), details(err))
	return WrapExitError(exit, message, err)
}

// failWith is fail with a fixed code and exit status.
func failWith(f *OutputFormatter, code string, exit int, message string, err error) error {
	msg := message
	if err != nil {
		msg += ": " + err.Error()
	}
	_ = f.Error(code, msg, details(err))
	if err == nil {
		return NewExitError(exit, message)
	}
	return WrapExitError(exit, message, err)
}

// details extracts structured context from known error types.
func details(err error) any {
	var ve *form.ValidationError
	if errors.As(err, &ve) {
		return map[string]any{"reason": ve.Reason, "rows": ve.Rows}
	}
	var re *sheet.RemoteError
	if errors.As(err, &re) {
		d := map[string]any{"op": re.Op}
		if re.Status != 0 {
			d["status"] = re.Status
		}
		if re.Snippet != "" {
			d["snippet"] = re.Snippet
		}
		return d
	}
	var se *catalog.SchemaError
	if errors.As(err, &se) && se.Pos.IsValid() {
		return map[string]any{"line": se.Pos.Line(), "column": se.Pos.Column()}
	}
	return nil
}
