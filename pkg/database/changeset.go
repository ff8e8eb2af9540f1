package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Changeset is a per-column mutation descriptor. A column is either
// present (set to the given value, which may be empty or NULL) or
// absent (left untouched). Built by the input mappers from
// partial-update payloads; applied as a single UPDATE statement.
type Changeset struct {
	columns []string
	args    []any
}

// Set records a column to write. Passing a nil value clears the column.
func (cs *Changeset) Set(column string, value any) {
	cs.columns = append(cs.columns, column)
	cs.args = append(cs.args, value)
}

// Len is the number of columns tagged for writing.
func (cs *Changeset) Len() int {
	return len(cs.columns)
}

// Apply writes all tagged columns of one row in a single transaction.
// An empty changeset is a no-op. Returns false when no row matched.
func (cs *Changeset) Apply(ctx context.Context, db *sql.DB, table, keyColumn, key string) (bool, error) {
	if cs.Len() == 0 {
		return true, nil
	}

	assignments := make([]string, 0, len(cs.columns))
	for _, col := range cs.columns {
		assignments = append(assignments, col+" = ?")
	}

	stmt := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = ?",
		table, strings.Join(assignments, ", "), keyColumn,
	)
	args := append(append([]any{}, cs.args...), key)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin apply changeset: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("apply changeset to %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply changeset rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit changeset: %w", err)
	}
	return affected > 0, nil
}
