// Package sheet talks to the remote sheet-backed store: the specification
// source, the submission sink, and the identity allowlist.
//
// Responses are untrusted text until proven otherwise. A body that starts
// with markup means the store answered with an error page, and is reported as
// ErrCodeMalformed even when the HTTP status is 200. Nothing is retried.
package sheet
