package libraries

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, lib models.Library) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO libraries (id, name, path)
		VALUES (?, ?, ?)
	`, lib.ID, lib.Name, lib.Path)
	if err != nil {
		return fmt.Errorf("create library: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Library, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, path, created_at
		FROM libraries
		WHERE id = ?
	`, id)

	var lib models.Library
	if err := row.Scan(&lib.ID, &lib.Name, &lib.Path, &lib.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get library: %w", err)
	}
	return &lib, nil
}

func (r *Repo) List(ctx context.Context) ([]models.Library, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, path, created_at
		FROM libraries
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()

	out := make([]models.Library, 0)
	for rows.Next() {
		var lib models.Library
		if err := rows.Scan(&lib.ID, &lib.Name, &lib.Path, &lib.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		out = append(out, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ExcludeUser hides the library (and everything in it) from one user.
// Idempotent.
func (r *Repo) ExcludeUser(ctx context.Context, libraryID, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO library_exclusions (library_id, user_id)
		VALUES (?, ?)
	`, libraryID, userID)
	if err != nil {
		return fmt.Errorf("exclude user: %w", err)
	}
	return nil
}

func (r *Repo) IncludeUser(ctx context.Context, libraryID, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM library_exclusions
		WHERE library_id = ? AND user_id = ?
	`, libraryID, userID)
	if err != nil {
		return false, fmt.Errorf("include user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) ListExclusions(ctx context.Context, libraryID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id FROM library_exclusions
		WHERE library_id = ?
		ORDER BY user_id ASC
	`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		out = append(out, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
