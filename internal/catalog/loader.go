package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// Source fetches the raw specification table.
type Source interface {
	FetchSpecs(ctx context.Context) ([]byte, error)
}

// Loader fetches the specification table and narrows it to a selection.
type Loader struct {
	source Source
	logger *slog.Logger
}

// NewLoader creates a loader over source. A nil logger uses slog.Default().
func NewLoader(source Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, logger: logger}
}

// Load returns the rows for (line, ct). On any error the returned catalog is nil.
func (l *Loader) Load(ctx context.Context, line string, ct ControlType) ([]Row, error) {
	rows, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	filtered := Filter(rows, line, ct)
	l.logger.Debug("catalog loaded",
		slog.String("line", line),
		slog.String("control", string(ct)),
		slog.Int("table_rows", len(rows)),
		slog.Int("rows", len(filtered)))
	return filtered, nil
}

// Lines returns the distinct lines of the whole table.
func (l *Loader) Lines(ctx context.Context) ([]string, error) {
	rows, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Lines(rows), nil
}

func (l *Loader) fetch(ctx context.Context) ([]Row, error) {
	payload, err := l.source.FetchSpecs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch specifications: %w", err)
	}

	rows, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
