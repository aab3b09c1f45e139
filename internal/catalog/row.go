package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is one measurement point to be checked (one line of the specification sheet).
type Row struct {
	Line        string      `json:"line"`
	ControlType ControlType `json:"control_type"`
	Station     string      `json:"station"`
	Point       string      `json:"point,omitempty"`
	Fixture     string      `json:"fixture,omitempty"`
	Min         Bound       `json:"min"`
	Max         Bound       `json:"max"`
	MinSeconds  Bound       `json:"min_seconds"`
	MaxSeconds  Bound       `json:"max_seconds"`
	Cycles      int         `json:"cycles,omitempty"`

	// SelectedLine is the line selection that produced this row (set by Filter).
	SelectedLine string `json:"selected_line,omitempty"`
}

// RequiresCycles reports whether a cycle count must be captured for this row.
func (r Row) RequiresCycles() bool {
	return r.Cycles > 0
}

// HasRange reports whether both primary bounds are set.
func (r Row) HasRange() bool {
	return r.Min.IsSet() && r.Max.IsSet()
}

// HasSecondsRange reports whether both timing bounds are set.
func (r Row) HasSecondsRange() bool {
	return r.MinSeconds.IsSet() && r.MaxSeconds.IsSet()
}

// Bound is an acceptance bound exactly as it arrived from the source.
// A number stays a number and a string stays a string; nothing is coerced.
type Bound struct {
	raw json.RawMessage
}

// NewBound wraps a raw JSON value. Used by tests and the sheet store.
func NewBound(raw string) Bound {
	return Bound{raw: json.RawMessage(raw)}
}

// IsSet reports whether the bound carries a value (not absent, null, or "").
func (b Bound) IsSet() bool {
	v := bytes.TrimSpace(b.raw)
	return len(v) > 0 && !bytes.Equal(v, []byte("null")) && !bytes.Equal(v, []byte(`""`))
}

// Raw returns the verbatim JSON value, or nil when unset.
func (b Bound) Raw() json.RawMessage {
	if !b.IsSet() {
		return nil
	}
	return b.raw
}

// String renders the bound for display: strings unquoted, numbers as written.
func (b Bound) String() string {
	if !b.IsSet() {
		return ""
	}
	return cellText(b.raw)
}

// MarshalJSON emits the verbatim value, or "" when unset (the sheet's empty cell).
func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.IsSet() {
		return []byte(`""`), nil
	}
	return b.raw, nil
}

// UnmarshalJSON keeps the raw value.
func (b *Bound) UnmarshalJSON(data []byte) error {
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

// wireRow mirrors the sheet columns. Cells may be strings, numbers, or null.
type wireRow struct {
	Linea   json.RawMessage `json:"Linea"`
	Tipo    json.RawMessage `json:"Tipo"`
	Puesto  json.RawMessage `json:"Puesto"`
	Fixture json.RawMessage `json:"Fixture"`
	Punto   json.RawMessage `json:"Punto"`
	Min     json.RawMessage `json:"Min"`
	Max     json.RawMessage `json:"Max"`
	MinSeg  json.RawMessage `json:"Min_Seg"`
	MaxSeg  json.RawMessage `json:"Max_Seg"`
	Ciclos  json.RawMessage `json:"Ciclos"`
}

func (w wireRow) row() Row {
	return Row{
		Line:        cellText(w.Linea),
		ControlType: ControlType(cellText(w.Tipo)),
		Station:     cellText(w.Puesto),
		Point:       cellText(w.Punto),
		Fixture:     cellText(w.Fixture),
		Min:         Bound{raw: w.Min},
		Max:         Bound{raw: w.Max},
		MinSeconds:  Bound{raw: w.MinSeg},
		MaxSeconds:  Bound{raw: w.MaxSeg},
		Cycles:      cellCount(w.Ciclos),
	}
}

// WireRow converts a Row back into the sheet's column layout.
func (r Row) WireRow() map[string]any {
	m := map[string]any{
		"Linea":   r.Line,
		"Tipo":    string(r.ControlType),
		"Puesto":  r.Station,
		"Fixture": r.Fixture,
		"Punto":   r.Point,
		"Min":     r.Min,
		"Max":     r.Max,
		"Min_Seg": r.MinSeconds,
		"Max_Seg": r.MaxSeconds,
		"Ciclos":  "",
	}
	if r.Cycles > 0 {
		m["Ciclos"] = r.Cycles
	}
	return m
}

// cellText renders a sheet cell as text. Numbers keep their written form.
func cellText(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	}
	return string(v)
}

// cellCount reads a cycle count cell. Anything that is not a positive number
// is 0; counts beyond the int range saturate at math.MaxInt.
func cellCount(raw json.RawMessage) int {
	s := strings.TrimSpace(cellText(raw))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(math.Ceil(f))
}
