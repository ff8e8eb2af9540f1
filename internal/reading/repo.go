package reading

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert inserts or updates a user's reading position for one media item
func (r *Repo) Upsert(ctx context.Context, item models.ReadingItem) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO reading_progress (user_id, media_id, current_page, status, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, media_id) DO UPDATE SET
			current_page = excluded.current_page,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, item.UserID, item.MediaID, item.CurrentPage, item.Status)
	if err != nil {
		return fmt.Errorf("upsert reading item: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, mediaID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM reading_progress
		WHERE user_id = ? AND media_id = ?
	`, userID, mediaID)
	if err != nil {
		return false, fmt.Errorf("delete reading item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID string, status string, limit, offset int) ([]models.ReadingItem, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reading_progress `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reading: %w", err)
	}

	listArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, media_id, current_page, status, updated_at
		FROM reading_progress `+where+`
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reading: %w", err)
	}
	defer rows.Close()

	out := make([]models.ReadingItem, 0, limit)
	for rows.Next() {
		var it models.ReadingItem
		var updated time.Time

		if err := rows.Scan(&it.UserID, &it.MediaID, &it.CurrentPage, &it.Status, &updated); err != nil {
			return nil, 0, fmt.Errorf("scan reading row: %w", err)
		}
		it.UpdatedAt = updated
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, userID, mediaID string) (*models.ReadingItem, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, media_id, current_page, status, updated_at
		FROM reading_progress
		WHERE user_id = ? AND media_id = ?
	`, userID, mediaID)

	var it models.ReadingItem
	var updated time.Time
	if err := row.Scan(&it.UserID, &it.MediaID, &it.CurrentPage, &it.Status, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get reading item: %w", err)
	}
	it.UpdatedAt = updated
	return &it, nil
}
