package access

import (
	"context"
	"log/slog"
)

// AllowlistSource fetches the remote list of allowed identities.
type AllowlistSource interface {
	FetchAllowlist(ctx context.Context) ([]string, error)
}

// Origin tells where an allowlist came from.
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginFallback Origin = "fallback"
)

// Allowlist is a loaded set of allowed identities.
type Allowlist struct {
	Emails []string
	Origin Origin
	// Err is the remote failure that caused a fallback, if any.
	Err error
}

// LoadAllowlist fetches the remote allowlist once. When the fetch fails or
// returns no addresses the static fallback is used instead. A nil source
// always yields the fallback.
func LoadAllowlist(ctx context.Context, source AllowlistSource, fallback []string, logger *slog.Logger) Allowlist {
	if logger == nil {
		logger = slog.Default()
	}
	if source == nil {
		return Allowlist{Emails: fallback, Origin: OriginFallback}
	}

	emails, err := source.FetchAllowlist(ctx)
	if err != nil {
		logger.Warn("allowlist fetch failed, using fallback", slog.String("error", err.Error()), slog.Int("fallback", len(fallback)))
		return Allowlist{Emails: fallback, Origin: OriginFallback, Err: err}
	}
	if len(emails) == 0 {
		logger.Warn("allowlist is empty, using fallback", slog.Int("fallback", len(fallback)))
		return Allowlist{Emails: fallback, Origin: OriginFallback}
	}

	logger.Debug("allowlist loaded", slog.Int("emails", len(emails)))
	return Allowlist{Emails: emails, Origin: OriginRemote}
}

// Gate builds a gate over the list for domain.
func (a Allowlist) Gate(domain string) *Gate {
	return NewGate(domain, a.Emails)
}
