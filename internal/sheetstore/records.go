package sheetstore

import (
	"context"
	"fmt"

	"github.com/roach88/qcform/internal/catalog"
	"github.com/roach88/qcform/internal/form"
)

// AppendRecords inserts records in one transaction and returns how many
// were new. Uses ON CONFLICT(id) DO NOTHING, so resending a batch is a no-op.
func (s *Store) AppendRecords(ctx context.Context, records []form.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append records: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(received_seq), 0) FROM records`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("append records: sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(id, fecha, usuario, tipo_control, linea, puesto, fixture, resultado, min, max, received_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("append records: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if r.ID == "" {
			return 0, fmt.Errorf("append records: record without ID")
		}
		minText, err := r.Min.MarshalJSON()
		if err != nil {
			return 0, fmt.Errorf("append records: %s: %w", r.ID, err)
		}
		maxText, err := r.Max.MarshalJSON()
		if err != nil {
			return 0, fmt.Errorf("append records: %s: %w", r.ID, err)
		}
		res, err := stmt.ExecContext(ctx,
			r.ID,
			r.Timestamp,
			r.Operator,
			r.ControlType,
			r.Line,
			r.Station,
			r.Fixture,
			r.Result,
			string(minText),
			string(maxText),
			seq+1,
		)
		if err != nil {
			return 0, fmt.Errorf("append records: %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
			seq++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append records: commit: %w", err)
	}
	return inserted, nil
}

// ListRecords returns stored records in arrival order.
func (s *Store) ListRecords(ctx context.Context) ([]form.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fecha, usuario, tipo_control, linea, puesto, fixture, resultado, min, max
		FROM records
		ORDER BY received_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []form.Record
	for rows.Next() {
		var r form.Record
		var minText, maxText string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Operator, &r.ControlType, &r.Line,
			&r.Station, &r.Fixture, &r.Result, &minText, &maxText); err != nil {
			return nil, fmt.Errorf("list records: scan: %w", err)
		}
		r.Min = catalog.NewBound(minText)
		r.Max = catalog.NewBound(maxText)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}
