package media

import (
	"context"
	"database/sql"
	"fmt"
)

// Repo handles media mutations. Reads go through the Finder so they
// stay scoped.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// UpdateMetadata validates and applies a partial metadata update.
// Fields absent from the input are never written. Returns false when
// the media item does not exist.
func (r *Repo) UpdateMetadata(ctx context.Context, mediaID string, in MetadataInput) (bool, error) {
	cs, err := in.Changeset()
	if err != nil {
		return false, err
	}

	var exists int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM media WHERE id = ?
	`, mediaID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check media: %w", err)
	}
	if exists == 0 {
		return false, nil
	}

	// Metadata is 1:1 with media but created lazily.
	if _, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO media_metadata (media_id) VALUES (?)
	`, mediaID); err != nil {
		return false, fmt.Errorf("ensure metadata row: %w", err)
	}

	if _, err := cs.Apply(ctx, r.DB, "media_metadata", "media_id", mediaID); err != nil {
		return false, err
	}

	if cs.Len() > 0 {
		if _, err := r.DB.ExecContext(ctx, `
			UPDATE media SET updated_at = CURRENT_TIMESTAMP WHERE id = ?
		`, mediaID); err != nil {
			return false, fmt.Errorf("touch media: %w", err)
		}
	}
	return true, nil
}
