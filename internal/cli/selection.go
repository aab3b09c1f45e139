package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qcform/internal/catalog"
	"github.com/roach88/qcform/internal/form"
)

// selectionFlags are the --line and --type flags shared by specs and submit.
type selectionFlags struct {
	Line    string
	Control string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.Line, "line", "", "production line (required)")
	cmd.Flags().StringVar(&s.Control, "type", "", "control type: "+controlTypeNames()+" (required)")
	_ = cmd.MarkFlagRequired("line")
	_ = cmd.MarkFlagRequired("type")
}

func controlTypeNames() string {
	var names []string
	for _, ct := range catalog.ControlTypes() {
		names = append(names, string(ct))
	}
	return strings.Join(names, "|")
}

// loadSession selects line and control type on s and installs the matching
// specification rows.
func loadSession(ctx context.Context, loader *catalog.Loader, s form.Session, sel selectionFlags) (form.Session, error) {
	ct, err := catalog.ParseControlType(sel.Control)
	if err != nil {
		return s, err
	}
	s = s.SelectLine(strings.TrimSpace(sel.Line)).SelectControl(ct)

	ticket, err := s.BeginLoad()
	if err != nil {
		return s, err
	}
	rows, err := loader.Load(ctx, ticket.Line, ticket.Control)
	if err != nil {
		return s, err
	}
	return s.WithCatalog(ticket, rows)
}

// SpecRow is one station prompt as shown to the operator.
type SpecRow struct {
	Index        int      `json:"index"`
	Station      string   `json:"station"`
	Point        string   `json:"point,omitempty"`
	Fixture      string   `json:"fixture,omitempty"`
	Range        string   `json:"range,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	Cycles       int      `json:"cycles,omitempty"`
	SecondsRange string   `json:"seconds_range,omitempty"`
}

func specRows(rows []catalog.Row) []SpecRow {
	out := make([]SpecRow, 0, len(rows))
	for i, r := range rows {
		sr := SpecRow{Index: i, Station: r.Station, Point: r.Point, Fixture: r.Fixture, Cycles: r.Cycles}
		if r.HasRange() {
			sr.Range = fmt.Sprintf("%s - %s", r.Min, r.Max)
		}
		if r.HasSecondsRange() {
			sr.SecondsRange = fmt.Sprintf("%s - %s", r.MinSeconds, r.MaxSeconds)
		}
		for _, v := range form.Verdicts(r.ControlType) {
			sr.Choices = append(sr.Choices, string(v))
		}
		out = append(out, sr)
	}
	return out
}

// renderSpecRows prints the prompt block for each row.
func renderSpecRows(ct catalog.ControlType, rows []SpecRow) string {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "[%d] %s\n", r.Index, r.Station)
		if ct == catalog.Press {
			fmt.Fprintf(&b, "    %s / %s\n", r.Point, r.Fixture)
		}
		if r.Range != "" {
			fmt.Fprintf(&b, "    Allowed range: %s\n", r.Range)
		}
		if len(r.Choices) > 0 {
			fmt.Fprintf(&b, "    Result: %s\n", strings.Join(r.Choices, " | "))
		}
		if ct == catalog.Press {
			if r.Cycles > 0 {
				fmt.Fprintf(&b, "    Cycles (ref: %d)\n", r.Cycles)
			}
			if r.SecondsRange != "" {
				fmt.Fprintf(&b, "    Seconds (spec: %s)\n", r.SecondsRange)
			} else {
				b.WriteString("    Seconds\n")
			}
		}
	}
	return b.String()
}
