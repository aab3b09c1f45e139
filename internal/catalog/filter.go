package catalog

import "sort"

// Filter returns the rows whose line and control type both equal the selection,
// in source order, each annotated with the selected line.
// The result is empty (never nil) when nothing matches.
func Filter(rows []Row, line string, ct ControlType) []Row {
	out := []Row{}
	for _, r := range rows {
		if r.Line != line || r.ControlType != ct {
			continue
		}
		r.SelectedLine = line
		out = append(out, r)
	}
	return out
}

// Lines returns the distinct non-empty line identifiers of the table, sorted.
func Lines(rows []Row) []string {
	seen := make(map[string]struct{}, len(rows))
	lines := []string{}
	for _, r := range rows {
		if r.Line == "" {
			continue
		}
		if _, ok := seen[r.Line]; ok {
			continue
		}
		seen[r.Line] = struct{}{}
		lines = append(lines, r.Line)
	}
	sort.Strings(lines)
	return lines
}
