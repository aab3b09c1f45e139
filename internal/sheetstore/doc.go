// Package sheetstore is a local stand-in for the spreadsheet behind the
// remote endpoints. It keeps specification rows, appended records and the
// allowlist in SQLite and serves them over HTTP with the same payload shapes
// the production scripts use, so the CLI can be exercised end to end.
//
// The submit path never writes here directly; it only talks to the HTTP
// handler like it would to the real service.
package sheetstore
