package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowed = []string{
	"known@newsan.com.ar",
	"Mixed.Case@NEWSAN.com.ar",
}

func TestGate_Check(t *testing.T) {
	g := NewGate("", testAllowed)

	tests := []struct {
		name      string
		candidate string
		wantErr   error
		wantEmail string
		wantName  string
	}{
		{"allowed", "known@newsan.com.ar", nil, "known@newsan.com.ar", "known"},
		{"case insensitive", "KNOWN@Newsan.Com.Ar", nil, "known@newsan.com.ar", "known"},
		{"allowlist normalized", "mixed.case@newsan.com.ar", nil, "mixed.case@newsan.com.ar", "mixed.case"},
		{"surrounding spaces", "  known@newsan.com.ar ", nil, "known@newsan.com.ar", "known"},
		{"empty", "   ", ErrEmptyIdentity, "", ""},
		{"no at", "known.newsan.com.ar", ErrMalformedAddress, "", ""},
		{"no tld", "known@newsan", ErrMalformedAddress, "", ""},
		{"inner space", "kn own@newsan.com.ar", ErrMalformedAddress, "", ""},
		{"foreign domain", "x@gmail.com", ErrForeignDomain, "", ""},
		{"subdomain is foreign", "known@mail.newsan.com.ar", ErrForeignDomain, "", ""},
		{"not listed", "stranger@newsan.com.ar", ErrNotAllowed, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := g.Check(tt.candidate)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Identity{}, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, id.Email)
			assert.Equal(t, tt.wantName, id.Name)
		})
	}
}

func TestGate_ForeignDomainRegardlessOfAllowlist(t *testing.T) {
	g := NewGate(DefaultDomain, []string{"x@gmail.com"})

	_, err := g.Check("x@gmail.com")
	assert.ErrorIs(t, err, ErrForeignDomain)
}

func TestGate_CustomDomain(t *testing.T) {
	g := NewGate("Example.ORG", []string{"ana@example.org"})
	assert.Equal(t, "example.org", g.Domain())
	assert.Equal(t, 1, g.Size())

	_, err := g.Check("ana@example.org")
	assert.NoError(t, err)

	_, err = g.Check("ana@newsan.com.ar")
	assert.ErrorIs(t, err, ErrForeignDomain)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jose@newsan.com.ar", Normalize(" JOSE@newsan.com.ar "))
	// Decomposed "E" + U+0301 composes before lower-casing.
	assert.Equal(t, "jos\u00e9@newsan.com.ar", Normalize("JOSE\u0301@newsan.com.ar"))
}

type stubAllowlistSource struct {
	emails []string
	err    error
}

func (s stubAllowlistSource) FetchAllowlist(ctx context.Context) ([]string, error) {
	return s.emails, s.err
}

func TestLoadAllowlist(t *testing.T) {
	fallback := []string{"static@newsan.com.ar"}
	boom := errors.New("network down")

	tests := []struct {
		name       string
		source     AllowlistSource
		wantOrigin Origin
		wantEmails []string
		wantErr    error
	}{
		{"remote", stubAllowlistSource{emails: []string{"remote@newsan.com.ar"}}, OriginRemote, []string{"remote@newsan.com.ar"}, nil},
		{"fetch fails", stubAllowlistSource{err: boom}, OriginFallback, fallback, boom},
		{"empty list", stubAllowlistSource{emails: []string{}}, OriginFallback, fallback, nil},
		{"no source", nil, OriginFallback, fallback, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := LoadAllowlist(context.Background(), tt.source, fallback, nil)
			assert.Equal(t, tt.wantOrigin, list.Origin)
			assert.Equal(t, tt.wantEmails, list.Emails)
			if tt.wantErr != nil {
				assert.ErrorIs(t, list.Err, tt.wantErr)
			} else {
				assert.NoError(t, list.Err)
			}
		})
	}
}

func TestAllowlist_Gate(t *testing.T) {
	list := LoadAllowlist(context.Background(), stubAllowlistSource{emails: []string{"Known@newsan.com.ar"}}, nil, nil)
	g := list.Gate("")

	id, err := g.Check("known@newsan.com.ar")
	require.NoError(t, err)
	assert.Equal(t, "known", id.Name)
}

func TestFlow_HappyPath(t *testing.T) {
	g := NewGate("", testAllowed)

	var f Flow
	assert.Equal(t, Unauthenticated, f.State())
	assert.Empty(t, f.WelcomeMessage())

	f, err := f.SignIn(g, "Known@newsan.com.ar")
	require.NoError(t, err)
	assert.Equal(t, Welcome, f.State())
	assert.Equal(t, "known@newsan.com.ar", f.Identity().Email)
	assert.Equal(t, "Welcome, known!", f.WelcomeMessage())

	f, err = f.Continue()
	require.NoError(t, err)
	assert.Equal(t, Authenticated, f.State())

	f = f.SignOut()
	assert.Equal(t, Unauthenticated, f.State())
	assert.Equal(t, Identity{}, f.Identity())
}

func TestFlow_DeniedStaysUnauthenticated(t *testing.T) {
	g := NewGate("", testAllowed)

	f, err := Flow{}.SignIn(g, "x@gmail.com")
	require.ErrorIs(t, err, ErrForeignDomain)
	assert.Equal(t, Unauthenticated, f.State())
}

func TestFlow_InvalidTransitions(t *testing.T) {
	g := NewGate("", testAllowed)

	_, err := Flow{}.Continue()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f, err := Flow{}.SignIn(g, "known@newsan.com.ar")
	require.NoError(t, err)

	_, err = f.SignIn(g, "known@newsan.com.ar")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f, err = f.Continue()
	require.NoError(t, err)
	_, err = f.Continue()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "welcome", Welcome.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "State(9)", State(9).String())
}
