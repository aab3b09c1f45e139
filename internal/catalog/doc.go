// Package catalog loads the measurement specification table and narrows it to
// the rows an operator has to fill in.
//
// The specification source is an externally owned sheet exposed as a JSON array
// of objects (one object per sheet row). Column names are the sheet's own:
//
//	Linea, Tipo, Puesto, Fixture, Punto, Min, Max, Min_Seg, Max_Seg, Ciclos
//
// Payloads must be strict JSON. They are checked against an embedded CUE schema
// before they are decoded, so a malformed table is rejected as a whole and no
// partial catalog is ever handed to the caller. A column repeated within a row
// keeps its last value.
//
// Filtering is exact and case-sensitive on (line, control type) and keeps the
// source order. The source does not guarantee a stable order and this package
// never re-sorts rows.
package catalog
