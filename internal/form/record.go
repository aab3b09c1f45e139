package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/qcform/internal/catalog"
)

// SecondsFixtureSuffix marks the timing sub-measurement of a Press row.
const SecondsFixtureSuffix = ".Segundos"

// Record is one flat row sent to the remote sheet. JSON keys are the sheet columns.
type Record struct {
	ID          string        `json:"ID"`
	Timestamp   string        `json:"Fecha"`
	Operator    string        `json:"Usuario"`
	ControlType string        `json:"TipoControl"`
	Line        string        `json:"Linea"`
	Station     string        `json:"Puesto"`
	Fixture     string        `json:"Fixture"`
	Result      string        `json:"Resultado"`
	Min         catalog.Bound `json:"Min"`
	Max         catalog.Bound `json:"Max"`
}

// DefaultTimestampLayout renders day/month/year, 24h time.
const DefaultTimestampLayout = "2/1/2006, 15:04:05"

// Stamp renders the submission instant into the Fecha column.
type Stamp struct {
	Layout   string
	Location *time.Location
}

// Format renders t. Zero fields fall back to DefaultTimestampLayout and UTC.
func (s Stamp) Format(t time.Time) string {
	layout := s.Layout
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}

// Build turns a validated session into sheet records. Every record shares the
// submission instant now; ids are unique within the batch.
//
// Non-Press rows yield one record per row with a result. Press rows yield a
// pressure record when the result is set and a seconds record when seconds
// are set, each gated on its own value.
//
// Build returns ErrEmptySubmission when nothing is left to send, even if
// Validate passed.
func Build(s Session, now time.Time, stamp Stamp) ([]Record, error) {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	base := Record{
		Timestamp:   stamp.Format(now),
		Operator:    s.operator,
		ControlType: string(s.control),
		Line:        strings.TrimSpace(s.line),
	}

	var records []Record
	for i, row := range s.rows {
		e := s.responses.Entry(i)
		idx := strconv.Itoa(i)

		if s.control != catalog.Press {
			if e.ResultText() == "" {
				continue
			}
			r := base
			r.ID = ms + idx
			r.Station = row.Station
			r.Fixture = row.Fixture
			r.Result = e.ResultText()
			r.Min = row.Min
			r.Max = row.Max
			records = append(records, r)
			continue
		}

		if e.ResultText() != "" {
			r := base
			r.ID = ms + "_p_" + idx
			r.Station = row.Station
			r.Fixture = row.Fixture
			r.Result = e.ResultText()
			r.Min = row.Min
			r.Max = row.Max
			records = append(records, r)
		}
		if e.Seconds != "" {
			r := base
			r.ID = ms + "_s_" + idx
			r.Station = row.Station
			r.Fixture = row.Fixture + SecondsFixtureSuffix
			r.Result = e.Seconds
			r.Min = row.MinSeconds
			r.Max = row.MaxSeconds
			records = append(records, r)
		}
	}

	if len(records) == 0 {
		return nil, ErrEmptySubmission
	}
	return records, nil
}
