package sheetstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/qcform/internal/catalog"
)

// ReplaceSpecs swaps the whole specification table for payload, a JSON
// array of sheet rows. The payload must pass the same checks the client
// applies when it fetches rows; on error the table is left untouched.
func (s *Store) ReplaceSpecs(ctx context.Context, payload []byte) (int, error) {
	rows, err := catalog.Decode(payload)
	if err != nil {
		return 0, fmt.Errorf("replace specs: %w", err)
	}
	var bodies []json.RawMessage
	if err := json.Unmarshal(payload, &bodies); err != nil {
		return 0, fmt.Errorf("replace specs: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace specs: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM specs`); err != nil {
		return 0, fmt.Errorf("replace specs: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO specs (position, line, control_type, body)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("replace specs: prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		var compact bytes.Buffer
		if err := json.Compact(&compact, bodies[i]); err != nil {
			return 0, fmt.Errorf("replace specs: row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, i, row.Line, string(row.ControlType), compact.String()); err != nil {
			return 0, fmt.Errorf("replace specs: row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace specs: commit: %w", err)
	}
	return len(rows), nil
}

// SpecsJSON returns every stored row as one JSON array in seed order.
func (s *Store) SpecsJSON(ctx context.Context) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM specs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list specs: scan: %w", err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
