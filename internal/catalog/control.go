package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ControlType is the inspection category of a specification row.
// Values are the sheet's own vocabulary ("Tipo" column).
type ControlType string

const (
	Torque    ControlType = "Torque"
	Wristband ControlType = "Pulsera"
	Press     ControlType = "Prensa"
)

// controlTypes lists the known vocabulary with the English alias accepted on input.
// Add a row here to extend the vocabulary.
var controlTypes = []struct {
	Type  ControlType
	Alias string
}{
	{Torque, "torque"},
	{Wristband, "wristband"},
	{Press, "press"},
}

// ControlTypes returns the known control types in display order.
func ControlTypes() []ControlType {
	out := make([]ControlType, len(controlTypes))
	for i, ct := range controlTypes {
		out[i] = ct.Type
	}
	return out
}

// ErrUnknownControlType is returned for values outside the vocabulary.
var ErrUnknownControlType = errors.New("unknown control type")

// ParseControlType resolves a wire value ("Prensa") or an English alias ("press").
// Matching is case-insensitive.
func ParseControlType(s string) (ControlType, error) {
	s = strings.TrimSpace(s)
	for _, ct := range controlTypes {
		if strings.EqualFold(s, string(ct.Type)) || strings.EqualFold(s, ct.Alias) {
			return ct.Type, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of %v", ErrUnknownControlType, s, ControlTypes())
}

// Known reports whether ct belongs to the vocabulary.
func (ct ControlType) Known() bool {
	for _, c := range controlTypes {
		if c.Type == ct {
			return true
		}
	}
	return false
}

// Alias returns the English name of the control type, or the wire value if unknown.
func (ct ControlType) Alias() string {
	for _, c := range controlTypes {
		if c.Type == ct {
			return c.Alias
		}
	}
	return string(ct)
}
