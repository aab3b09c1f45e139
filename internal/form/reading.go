package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/qcform/internal/catalog"
)

// Result is an entered reading. The concrete type depends on the control type:
// TorqueResult for Torque, WristbandResult for Wristband, PressResult for Press.
type Result interface {
	// Text is the value as it is sent to the sheet.
	Text() string
	// Control is the control type the reading belongs to.
	Control() catalog.ControlType

	isResult()
}

// Verdict is a pass/fail judgement chosen by the operator.
type Verdict string

const (
	VerdictOK  Verdict = "OK"
	VerdictNG  Verdict = "NG"
	VerdictTNG Verdict = "TNG"
)

// TorqueResult is a numeric torque reading.
type TorqueResult struct {
	Raw   string
	Value float64
}

func (r TorqueResult) Text() string                 { return r.Raw }
func (r TorqueResult) Control() catalog.ControlType { return catalog.Torque }
func (TorqueResult) isResult()                      {}

// WristbandResult is a wristband test verdict: OK, NG or TNG.
type WristbandResult struct {
	Verdict Verdict
}

func (r WristbandResult) Text() string                 { return string(r.Verdict) }
func (r WristbandResult) Control() catalog.ControlType { return catalog.Wristband }
func (WristbandResult) isResult()                      {}

// PressResult is a press pressure verdict: OK or NG.
type PressResult struct {
	Verdict Verdict
}

func (r PressResult) Text() string                 { return string(r.Verdict) }
func (r PressResult) Control() catalog.ControlType { return catalog.Press }
func (PressResult) isResult()                      {}

// Verdicts returns the verdicts an operator may choose for ct, or nil when
// ct takes a numeric reading.
func Verdicts(ct catalog.ControlType) []Verdict {
	switch ct {
	case catalog.Wristband:
		return []Verdict{VerdictOK, VerdictNG, VerdictTNG}
	case catalog.Press:
		return []Verdict{VerdictOK, VerdictNG}
	default:
		return nil
	}
}

// InputError reports a value that is not acceptable for its field.
type InputError struct {
	Field   string
	Value   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// ParseResult parses raw as a reading for ct. An empty raw yields a nil Result.
func ParseResult(ct catalog.ControlType, raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch ct {
	case catalog.Torque:
		v, err := parseNumber(raw)
		if err != nil {
			return nil, &InputError{Field: "result", Value: raw, Message: "torque readings must be numeric"}
		}
		return TorqueResult{Raw: raw, Value: v}, nil
	case catalog.Wristband:
		v, err := parseVerdict(ct, raw)
		if err != nil {
			return nil, err
		}
		return WristbandResult{Verdict: v}, nil
	case catalog.Press:
		v, err := parseVerdict(ct, raw)
		if err != nil {
			return nil, err
		}
		return PressResult{Verdict: v}, nil
	default:
		return nil, &InputError{Field: "result", Value: raw, Message: fmt.Sprintf("unknown control type %q", ct)}
	}
}

func parseVerdict(ct catalog.ControlType, raw string) (Verdict, error) {
	allowed := Verdicts(ct)
	for _, v := range allowed {
		if strings.EqualFold(raw, string(v)) {
			return v, nil
		}
	}
	return "", &InputError{
		Field:   "result",
		Value:   raw,
		Message: fmt.Sprintf("%s results must be one of %v", ct.Alias(), allowed),
	}
}

// parseQuantity validates a non-negative numeric field (cycle count, seconds)
// and returns it trimmed. Empty input is allowed and returned as "".
func parseQuantity(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	v, err := parseNumber(raw)
	if err != nil || v < 0 {
		return "", &InputError{Field: field, Value: raw, Message: "must be a non-negative number"}
	}
	return raw, nil
}

// parseNumber accepts a dot or comma decimal separator.
func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}
