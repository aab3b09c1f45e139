package sheetstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the initial content of the sheet.
type Seed struct {
	// Specs is a JSON array of specification rows, in sheet column layout.
	Specs []byte
	// Allowlist is nil when the allowlist should be left as is.
	Allowlist []string
}

// ReadSeed reads seed files. Either path may be empty.
// The allowlist file is a YAML (or JSON) sequence of addresses.
func ReadSeed(specsPath, allowlistPath string) (Seed, error) {
	var seed Seed
	if specsPath != "" {
		data, err := os.ReadFile(specsPath)
		if err != nil {
			return Seed{}, fmt.Errorf("read specs seed: %w", err)
		}
		seed.Specs = data
	}
	if allowlistPath != "" {
		data, err := os.ReadFile(allowlistPath)
		if err != nil {
			return Seed{}, fmt.Errorf("read allowlist seed: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		emails := []string{}
		if err := dec.Decode(&emails); err != nil && !errors.Is(err, io.EOF) {
			return Seed{}, fmt.Errorf("parse allowlist seed %s: %w", allowlistPath, err)
		}
		seed.Allowlist = emails
	}
	return seed, nil
}

// Seed loads seed content into the store and refreshes the gauges.
func (s *Server) Seed(ctx context.Context, seed Seed) error {
	if seed.Specs != nil {
		n, err := s.store.ReplaceSpecs(ctx, seed.Specs)
		if err != nil {
			return err
		}
		s.metrics.specRows.Set(float64(n))
		s.logger.Info("specifications seeded", slog.Int("rows", n))
	}
	if seed.Allowlist != nil {
		n, err := s.store.ReplaceAllowlist(ctx, seed.Allowlist)
		if err != nil {
			return err
		}
		s.logger.Info("allowlist seeded", slog.Int("emails", n))
	}
	return nil
}
