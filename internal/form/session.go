package form

import (
	"fmt"
	"strings"

	"github.com/roach88/qcform/internal/catalog"
)

// Key addresses one response: the catalog generation plus the row position.
// Keys are only valid for the generation that issued them.
type Key struct {
	Generation uint64
	Index      int
}

func (k Key) String() string {
	return fmt.Sprintf("%d#%d", k.Generation, k.Index)
}

// LoadTicket identifies a catalog load started for a selection.
type LoadTicket struct {
	Generation uint64
	Line       string
	Control    catalog.ControlType
}

// Session is an immutable snapshot of one operator's form.
// The zero value is not usable; create sessions with NewSession.
type Session struct {
	id         string
	operator   string
	line       string
	control    catalog.ControlType
	generation uint64
	loaded     bool
	rows       []catalog.Row
	responses  ResponseSet
}

// NewSession starts an empty form for operator.
func NewSession(operator string, ids IDGenerator) Session {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return Session{
		id:         ids.Generate(),
		operator:   strings.TrimSpace(operator),
		generation: 1,
	}
}

func (s Session) ID() string                   { return s.id }
func (s Session) Operator() string             { return s.operator }
func (s Session) Line() string                 { return s.line }
func (s Session) Control() catalog.ControlType { return s.control }
func (s Session) Generation() uint64           { return s.generation }
func (s Session) Responses() ResponseSet       { return s.responses }

// Loaded reports whether a catalog is installed for the current selection.
func (s Session) Loaded() bool { return s.loaded }

// Len is the number of visible rows.
func (s Session) Len() int { return len(s.rows) }

// Row returns the visible row at index.
func (s Session) Row(index int) catalog.Row { return s.rows[index] }

// Rows returns a copy of the visible catalog.
func (s Session) Rows() []catalog.Row {
	return append([]catalog.Row(nil), s.rows...)
}

// WithOperator returns the session with a different operator identity.
func (s Session) WithOperator(operator string) Session {
	s.operator = strings.TrimSpace(operator)
	return s
}

// SelectLine changes the line selection. A change drops the catalog and every
// response and starts a new generation; reselecting the same line is a no-op.
func (s Session) SelectLine(line string) Session {
	if line == s.line {
		return s
	}
	s.line = line
	return s.invalidate()
}

// SelectControl changes the control type selection, like SelectLine.
func (s Session) SelectControl(ct catalog.ControlType) Session {
	if ct == s.control {
		return s
	}
	s.control = ct
	return s.invalidate()
}

// BeginLoad issues a ticket for loading the catalog of the current selection.
func (s Session) BeginLoad() (LoadTicket, error) {
	if s.line == "" || s.control == "" {
		return LoadTicket{}, ErrIncompleteSelection
	}
	return LoadTicket{Generation: s.generation, Line: s.line, Control: s.control}, nil
}

// WithCatalog installs rows loaded under ticket and resets every response to
// empty. A ticket issued before the latest selection change is rejected with
// ErrStaleCatalog and the session is returned unchanged.
func (s Session) WithCatalog(ticket LoadTicket, rows []catalog.Row) (Session, error) {
	if ticket.Generation != s.generation || ticket.Line != s.line || ticket.Control != s.control {
		return s, fmt.Errorf("%w: ticket %d for %s/%s, session at %d for %s/%s", ErrStaleCatalog,
			ticket.Generation, ticket.Line, ticket.Control, s.generation, s.line, s.control)
	}

	s = s.invalidate()
	s.rows = append([]catalog.Row(nil), rows...)
	s.responses = newResponseSet(s.generation, len(rows))
	s.loaded = true
	return s, nil
}

// Key returns the current-generation key for a row position.
func (s Session) Key(index int) (Key, error) {
	if index < 0 || index >= len(s.rows) {
		return Key{}, fmt.Errorf("%w: row %d of %d", ErrUnknownKey, index, len(s.rows))
	}
	return Key{Generation: s.generation, Index: index}, nil
}

// KeyFor resolves a (station, fixture, point) triple to a current-generation
// key. Empty fixture or point act as wildcards; the remaining fields must
// then single out exactly one row.
func (s Session) KeyFor(station, fixture, point string) (Key, error) {
	match := -1
	for i, r := range s.rows {
		if r.Station != station {
			continue
		}
		if fixture != "" && r.Fixture != fixture {
			continue
		}
		if point != "" && r.Point != point {
			continue
		}
		if match >= 0 {
			return Key{}, fmt.Errorf("%w: station %q fixture %q point %q matches more than one row",
				ErrAmbiguousKey, station, fixture, point)
		}
		match = i
	}
	if match < 0 {
		return Key{}, fmt.Errorf("%w: no row for station %q fixture %q point %q", ErrUnknownKey, station, fixture, point)
	}
	return s.Key(match)
}

// SetResult records the reading for key. An empty value clears it.
func (s Session) SetResult(key Key, raw string) (Session, error) {
	if err := s.checkKey(key); err != nil {
		return s, err
	}
	result, err := ParseResult(s.control, raw)
	if err != nil {
		return s, err
	}
	e := s.responses.Entry(key.Index)
	e.Result = result
	s.responses = s.responses.with(key.Index, e)
	return s, nil
}

// SetCycleCount records the cycle count for key. An empty value clears it.
func (s Session) SetCycleCount(key Key, raw string) (Session, error) {
	if err := s.checkKey(key); err != nil {
		return s, err
	}
	v, err := parseQuantity("cycle count", raw)
	if err != nil {
		return s, err
	}
	e := s.responses.Entry(key.Index)
	e.CycleCount = v
	s.responses = s.responses.with(key.Index, e)
	return s, nil
}

// SetSeconds records the timing reading for key. An empty value clears it.
func (s Session) SetSeconds(key Key, raw string) (Session, error) {
	if err := s.checkKey(key); err != nil {
		return s, err
	}
	v, err := parseQuantity("seconds", raw)
	if err != nil {
		return s, err
	}
	e := s.responses.Entry(key.Index)
	e.Seconds = v
	s.responses = s.responses.with(key.Index, e)
	return s, nil
}

// Reset clears the selection, the catalog and every response, keeping the
// session id and operator. Called after a successful submission so the next
// one starts from a fresh selection.
func (s Session) Reset() Session {
	s.line = ""
	s.control = ""
	return s.invalidate()
}

func (s Session) invalidate() Session {
	s.generation++
	s.loaded = false
	s.rows = nil
	s.responses = ResponseSet{generation: s.generation}
	return s
}

func (s Session) checkKey(key Key) error {
	if key.Generation != s.generation {
		return fmt.Errorf("%w: key %s, session at generation %d", ErrStaleKey, key, s.generation)
	}
	if key.Index < 0 || key.Index >= len(s.rows) {
		return fmt.Errorf("%w: key %s, %d rows", ErrUnknownKey, key, len(s.rows))
	}
	return nil
}
