// Package form implements the specification-driven data-collection form.
//
// A Session is an immutable snapshot of one operator's form: the selected line
// and control type, the catalog loaded for that selection, and the responses
// entered so far. Every transition returns a new Session; nothing is mutated
// in place.
//
// Responses are addressed by Key, which pairs the catalog generation with the
// row position. Selecting a different line or control type, or installing a
// new catalog, starts a new generation and invalidates every older key.
// Catalog loads are ticketed the same way, so a slow load that finishes after
// the selection changed is rejected instead of overwriting the newer one.
//
// Validate decides whether a Session may be submitted, Build turns it into
// flat sheet records, and Submitter ties both to a Sink.
package form
