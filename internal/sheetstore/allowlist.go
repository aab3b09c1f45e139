package sheetstore

import (
	"context"
	"fmt"

	"github.com/roach88/qcform/internal/access"
)

// ReplaceAllowlist stores the normalized, de-duplicated addresses.
func (s *Store) ReplaceAllowlist(ctx context.Context, emails []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace allowlist: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM allowed`); err != nil {
		return 0, fmt.Errorf("replace allowlist: clear: %w", err)
	}

	n := 0
	for _, e := range emails {
		email := access.Normalize(e)
		if email == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO allowed (email) VALUES (?) ON CONFLICT(email) DO NOTHING`, email)
		if err != nil {
			return 0, fmt.Errorf("replace allowlist: %s: %w", email, err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			n++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace allowlist: commit: %w", err)
	}
	return n, nil
}

// Allowlist returns the stored addresses sorted.
func (s *Store) Allowlist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email FROM allowed ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list allowlist: %w", err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("list allowlist: scan: %w", err)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list allowlist: %w", err)
	}
	return emails, nil
}
