package access

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultDomain is the only domain allowed through the gate unless configured otherwise.
const DefaultDomain = "newsan.com.ar"

var (
	ErrEmptyIdentity    = errors.New("enter an email address")
	ErrMalformedAddress = errors.New("not a valid email address")
	ErrForeignDomain    = errors.New("address is outside the allowed domain")
	ErrNotAllowed       = errors.New("not authorized to use this application")
)

var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identity is an operator that passed the gate.
type Identity struct {
	Email string
	// Name is the local part of the address, shown on the welcome screen.
	Name string
}

// Gate checks candidate identities against an allowlist.
// A Gate is immutable and safe for concurrent use.
type Gate struct {
	domain  string
	allowed map[string]struct{}
}

// NewGate creates a gate for domain over the allowed addresses.
// Addresses are normalized the same way candidates are.
func NewGate(domain string, allowed []string) *Gate {
	if domain == "" {
		domain = DefaultDomain
	}
	g := &Gate{domain: Normalize(domain), allowed: make(map[string]struct{}, len(allowed))}
	for _, a := range allowed {
		if n := Normalize(a); n != "" {
			g.allowed[n] = struct{}{}
		}
	}
	return g
}

// Domain is the single allowed domain.
func (g *Gate) Domain() string { return g.domain }

// Size is the number of allowed identities.
func (g *Gate) Size() int { return len(g.allowed) }

// Check admits candidate or returns why it was refused.
func (g *Gate) Check(candidate string) (Identity, error) {
	email := Normalize(candidate)
	if email == "" {
		return Identity{}, ErrEmptyIdentity
	}
	if !addressPattern.MatchString(email) {
		return Identity{}, fmt.Errorf("%w: %q", ErrMalformedAddress, email)
	}

	local, domain, _ := strings.Cut(email, "@")
	if domain != g.domain {
		return Identity{}, fmt.Errorf("%w: %q is not %s", ErrForeignDomain, domain, g.domain)
	}
	if _, ok := g.allowed[email]; !ok {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotAllowed, email)
	}
	return Identity{Email: email, Name: local}, nil
}

// Normalize trims, NFC-normalizes and lower-cases an address.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}
