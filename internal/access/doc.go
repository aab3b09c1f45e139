// Package access gates the form behind an email allowlist.
//
// This is not authentication: there is no password, token or session expiry.
// A candidate address is normalized to lower case, checked for a plausible
// shape, restricted to a single domain, and looked up in a set of allowed
// identities. The set is fetched once from a remote source and falls back to
// a static list when the fetch fails or comes back empty.
package access
