package series

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create inserts a fresh record from the input. Absent fields stay
// NULL. Categorical fields are validated the same way as on update.
func (r *Repo) Create(ctx context.Context, in MetadataInput) (*models.SeriesMetadata, error) {
	normalized, err := in.normalize()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO series_metadata
			(id, meta_type, title, summary, publisher, imprint, external_id, volume, booktype, age_rating, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		strPtr(normalized.MetaType),
		strPtr(normalized.Title),
		strPtr(normalized.Summary),
		strPtr(normalized.Publisher),
		strPtr(normalized.Imprint),
		intPtr(normalized.ExternalID),
		intPtr(normalized.Volume),
		strPtr(normalized.Booktype),
		intPtr(normalized.AgeRating),
		strPtr(normalized.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("create series metadata: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Update applies a partial update atomically: either every present
// field is written or nothing is. Returns false when no record matches.
func (r *Repo) Update(ctx context.Context, id string, in MetadataInput) (bool, error) {
	cs, err := in.Changeset()
	if err != nil {
		return false, err
	}
	if cs.Len() == 0 {
		// all-leave input: no-op, but report whether the record exists
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		return existing != nil, nil
	}

	cs.Set("updated_at", time.Now().UTC())
	return cs.Apply(ctx, r.DB, "series_metadata", "id", id)
}

const seriesColumns = `id, meta_type, title, summary, publisher, imprint, external_id, volume, booktype, age_rating, status, created_at, updated_at`

func scanSeries(scan func(dest ...any) error) (*models.SeriesMetadata, error) {
	var (
		sm         models.SeriesMetadata
		metaType   sql.NullString
		title      sql.NullString
		summary    sql.NullString
		publisher  sql.NullString
		imprint    sql.NullString
		externalID sql.NullInt64
		volume     sql.NullInt64
		booktype   sql.NullString
		ageRating  sql.NullInt64
		status     sql.NullString
	)

	if err := scan(
		&sm.ID, &metaType, &title, &summary, &publisher, &imprint,
		&externalID, &volume, &booktype, &ageRating, &status,
		&sm.CreatedAt, &sm.UpdatedAt,
	); err != nil {
		return nil, err
	}

	sm.MetaType = metaType.String
	sm.Title = title.String
	sm.Summary = summary.String
	sm.Publisher = publisher.String
	sm.Imprint = imprint.String
	if externalID.Valid {
		v := int(externalID.Int64)
		sm.ExternalID = &v
	}
	if volume.Valid {
		v := int(volume.Int64)
		sm.Volume = &v
	}
	sm.Booktype = booktype.String
	if ageRating.Valid {
		v := int(ageRating.Int64)
		sm.AgeRating = &v
	}
	sm.Status = status.String
	return &sm, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.SeriesMetadata, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+seriesColumns+`
		FROM series_metadata
		WHERE id = ?
	`, id)

	sm, err := scanSeries(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get series metadata: %w", err)
	}
	return sm, nil
}

// GetByTitle returns the record whose title exactly matches, or nil.
// Exact match here, unlike relationship resolution: a stored record is
// a concrete entity, not an inferred association.
func (r *Repo) GetByTitle(ctx context.Context, title string) (*models.SeriesMetadata, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+seriesColumns+`
		FROM series_metadata
		WHERE title = ?
	`, title)

	sm, err := scanSeries(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get series metadata by title: %w", err)
	}
	return sm, nil
}

func (r *Repo) List(ctx context.Context, titleFilter string, limit, offset int) ([]models.SeriesMetadata, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var where []string
	var args []any
	if kw := strings.TrimSpace(titleFilter); kw != "" {
		where = append(where, `LOWER(COALESCE(title, '')) LIKE ?`)
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}

	whereStr := ""
	if len(where) > 0 {
		whereStr = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM series_metadata`+whereStr, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count series metadata: %w", err)
	}

	listArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+seriesColumns+`
		FROM series_metadata`+whereStr+`
		ORDER BY COALESCE(title, '') ASC, id ASC
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list series metadata: %w", err)
	}
	defer rows.Close()

	out := make([]models.SeriesMetadata, 0, limit)
	for rows.Next() {
		sm, err := scanSeries(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan series metadata: %w", err)
		}
		out = append(out, *sm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

func strPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
