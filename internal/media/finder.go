package media

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bookhub/pkg/liberr"
	"bookhub/pkg/models"
)

// Finder is the only way to obtain a media query. Every query it hands
// out is already scoped to one user's visibility; the rest of the
// package refines that handle but can never widen it.
type Finder struct {
	DB *sql.DB
}

func NewFinder(db *sql.DB) *Finder {
	return &Finder{DB: db}
}

// Query is a scoped, composable media query handle. All fields are
// unexported and there is no exported constructor, so code outside this
// package cannot build an unscoped query.
type Query struct {
	userID string
	where  []string
	args   []any
}

// Visible resolves userID to a visibility scope and returns the query
// handle for everything that user may see: media in libraries the user
// is not excluded from, further narrowed by the user's age restriction
// (restricted users do not see unrated media).
//
// Returns liberr.ErrUnauthorizedScope when the user does not exist;
// callers must abort instead of falling back to an unscoped read.
func (f *Finder) Visible(ctx context.Context, userID string) (*Query, error) {
	row := f.DB.QueryRowContext(ctx, `
		SELECT age_restriction FROM users WHERE id = ?
	`, userID)

	var restriction sql.NullInt64
	if err := row.Scan(&restriction); err != nil {
		if err == sql.ErrNoRows {
			return nil, liberr.ErrUnauthorizedScope
		}
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	q := &Query{userID: userID}
	q.where = append(q.where, `
		m.library_id NOT IN (SELECT library_id FROM library_exclusions WHERE user_id = ?)`)
	q.args = append(q.args, userID)

	if restriction.Valid {
		q.where = append(q.where, `(md.age_rating IS NOT NULL AND md.age_rating <= ?)`)
		q.args = append(q.args, restriction.Int64)
	}
	return q, nil
}

func (q *Query) clone() *Query {
	next := &Query{userID: q.userID}
	next.where = append(next.where, q.where...)
	next.args = append(next.args, q.args...)
	return next
}

// WriterContains narrows to media whose writers list contains name as a
// case-sensitive substring (instr, not LIKE: sqlite LIKE is
// case-insensitive for ASCII). The writers column is one delimited text
// field, so "Ann" also matches "Anna Smith" — a known false-positive
// accepted in exchange for not normalizing the source data.
// TODO: offer token matching on the comma delimiter as a strict mode.
func (q *Query) WriterContains(name string) *Query {
	next := q.clone()
	next.where = append(next.where, `instr(COALESCE(md.writers, ''), ?) > 0`)
	next.args = append(next.args, name)
	return next
}

// SeriesContains narrows to media whose series field contains title as
// a case-sensitive substring. Same matching caveats as WriterContains.
func (q *Query) SeriesContains(title string) *Query {
	next := q.clone()
	next.where = append(next.where, `instr(COALESCE(md.series, ''), ?) > 0`)
	next.args = append(next.args, title)
	return next
}

// Keyword narrows with a case-insensitive search over title, file name
// and writers. Used by the list endpoint, not by relationship
// resolution.
func (q *Query) Keyword(kw string) *Query {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return q
	}
	next := q.clone()
	next.where = append(next.where, `(LOWER(COALESCE(md.title, '')) LIKE ? OR LOWER(m.name) LIKE ? OR LOWER(COALESCE(md.writers, '')) LIKE ?)`)
	pattern := "%" + strings.ToLower(kw) + "%"
	next.args = append(next.args, pattern, pattern, pattern)
	return next
}

// InLibrary narrows to a single library.
func (q *Query) InLibrary(libraryID string) *Query {
	next := q.clone()
	next.where = append(next.where, `m.library_id = ?`)
	next.args = append(next.args, libraryID)
	return next
}

const mediaSelect = `
	SELECT m.id, m.library_id, m.name, m.path, m.pages, m.created_at, m.updated_at,
	       md.title, md.series, md.writers, md.publisher, md.genre, md.summary, md.age_rating
	FROM media m
	LEFT JOIN media_metadata md ON md.media_id = m.id
`

func (q *Query) buildWhere() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func scanMedia(rows *sql.Rows) (models.MediaWithMetadata, error) {
	var (
		m         models.MediaWithMetadata
		title     sql.NullString
		series    sql.NullString
		writers   sql.NullString
		publisher sql.NullString
		genre     sql.NullString
		summary   sql.NullString
		ageRating sql.NullInt64
	)

	if err := rows.Scan(
		&m.ID, &m.LibraryID, &m.Name, &m.Path, &m.Pages, &m.CreatedAt, &m.UpdatedAt,
		&title, &series, &writers, &publisher, &genre, &summary, &ageRating,
	); err != nil {
		return m, err
	}

	m.Metadata.MediaID = m.ID
	m.Metadata.Title = title.String
	m.Metadata.Series = series.String
	m.Metadata.Writers = writers.String
	m.Metadata.Publisher = publisher.String
	m.Metadata.Genre = genre.String
	m.Metadata.Summary = summary.String
	if ageRating.Valid {
		v := int(ageRating.Int64)
		m.Metadata.AgeRating = &v
	}
	return m, nil
}

// Find returns every match, ordered by metadata title (falling back to
// file name) then id for a stable order.
func (f *Finder) Find(ctx context.Context, q *Query) ([]models.MediaWithMetadata, error) {
	stmt := mediaSelect + q.buildWhere() + ` ORDER BY COALESCE(md.title, m.name) ASC, m.id ASC`

	rows, err := f.DB.QueryContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	defer rows.Close()

	out := make([]models.MediaWithMetadata, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// FindPage is Find with clamped pagination.
func (f *Finder) FindPage(ctx context.Context, q *Query, limit, offset int) ([]models.MediaWithMetadata, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	stmt := mediaSelect + q.buildWhere() +
		` ORDER BY COALESCE(md.title, m.name) ASC, m.id ASC LIMIT ? OFFSET ?`
	args := append(append([]any{}, q.args...), limit, offset)

	rows, err := f.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("find media page: %w", err)
	}
	defer rows.Close()

	out := make([]models.MediaWithMetadata, 0, limit)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (f *Finder) Count(ctx context.Context, q *Query) (int, error) {
	stmt := `
		SELECT COUNT(*)
		FROM media m
		LEFT JOIN media_metadata md ON md.media_id = m.id
	` + q.buildWhere()

	var total int
	if err := f.DB.QueryRowContext(ctx, stmt, q.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return total, nil
}

// GetByID returns one visible media item, or nil when the item does not
// exist or is outside the query's scope (indistinguishable on purpose).
func (f *Finder) GetByID(ctx context.Context, q *Query, id string) (*models.MediaWithMetadata, error) {
	narrowed := q.clone()
	narrowed.where = append(narrowed.where, `m.id = ?`)
	narrowed.args = append(narrowed.args, id)

	items, err := f.Find(ctx, narrowed)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// DistinctSeriesTitles returns the distinct non-empty series titles
// among the matched media, lexicographically ordered. The order is part
// of the contract: clients paginate over it.
func (f *Finder) DistinctSeriesTitles(ctx context.Context, q *Query) ([]string, error) {
	narrowed := q.clone()
	narrowed.where = append(narrowed.where, `md.series IS NOT NULL AND md.series <> ''`)

	stmt := `
		SELECT DISTINCT md.series
		FROM media m
		LEFT JOIN media_metadata md ON md.media_id = m.id
	` + narrowed.buildWhere() + ` ORDER BY md.series ASC`

	rows, err := f.DB.QueryContext(ctx, stmt, narrowed.args...)
	if err != nil {
		return nil, fmt.Errorf("distinct series titles: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan series title: %w", err)
		}
		out = append(out, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
