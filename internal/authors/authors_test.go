package authors

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/media"
	"bookhub/pkg/database"
	"bookhub/pkg/liberr"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	// a fresh pool connection would get its own empty in-memory db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.MigrateFrom(db, "../../docs/schema.sql"))
	return NewService(media.NewFinder(db)), db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}

func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ('u1', 'u1', 'u1@example.com', 'x'),
		       ('u2', 'u2', 'u2@example.com', 'x')
	`)
	mustExec(t, db, `
		INSERT INTO libraries (id, name, path)
		VALUES ('lib1', 'Main', '/data/main'), ('lib2', 'Private', '/data/private')
	`)
	mustExec(t, db, `
		INSERT INTO library_exclusions (library_id, user_id) VALUES ('lib2', 'u2')
	`)
	mustExec(t, db, `
		INSERT INTO media (id, library_id, name, path)
		VALUES ('m1', 'lib1', 'm1.cbz', '/m1'),
		       ('m2', 'lib1', 'm2.cbz', '/m2'),
		       ('m3', 'lib2', 'm3.cbz', '/m3')
	`)
	mustExec(t, db, `
		INSERT INTO media_metadata (media_id, title, series, writers)
		VALUES ('m1', 'Watchmen #1', 'Watchmen', 'Alan Moore, Dave Gibbons'),
		       ('m2', 'Swamp Thing #21', 'Swamp Thing', 'Alan Moore'),
		       ('m3', 'Watchmen #2', 'Watchmen', 'Alan Moore, Dave Gibbons')
	`)
}

func TestAssembleProjectsOnlyRequestedFields(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	ctx := context.Background()

	author, err := svc.Assemble(ctx, "u1", "Alan Moore", Projection{Books: true})
	require.NoError(t, err)
	assert.Equal(t, "Alan Moore", author.Name)
	assert.Len(t, author.Books, 3)
	assert.Nil(t, author.Series)

	author, err = svc.Assemble(ctx, "u1", "Alan Moore", Projection{Series: true})
	require.NoError(t, err)
	assert.Nil(t, author.Books)
	require.Len(t, author.Series, 2)
	assert.Equal(t, "Swamp Thing", author.Series[0].Title)
	assert.Equal(t, "Watchmen", author.Series[1].Title)
	assert.Nil(t, author.Series[0].Books)
}

func TestAssembleNestedSeriesBooks(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)

	author, err := svc.Assemble(context.Background(), "u1", "Alan Moore", Projection{
		Series:      true,
		SeriesBooks: true,
	})
	require.NoError(t, err)
	require.Len(t, author.Series, 2)

	assert.Equal(t, "Swamp Thing", author.Series[0].Title)
	assert.Len(t, author.Series[0].Books, 1)
	assert.Equal(t, "Watchmen", author.Series[1].Title)
	assert.Len(t, author.Series[1].Books, 2)
}

func TestAssembleHonorsCallerScope(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)

	// u2 is excluded from lib2 and must not see m3
	author, err := svc.Assemble(context.Background(), "u2", "Alan Moore", Projection{
		Books:       true,
		Series:      true,
		SeriesBooks: true,
	})
	require.NoError(t, err)
	assert.Len(t, author.Books, 2)
	require.Len(t, author.Series, 2)
	assert.Len(t, author.Series[1].Books, 1)
}

func TestAssembleUnknownUserAbortsWholeAggregate(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)

	author, err := svc.Assemble(context.Background(), "ghost", "Alan Moore", Projection{Books: true})
	assert.Nil(t, author)
	assert.ErrorIs(t, err, liberr.ErrUnauthorizedScope)
}

func TestAssembleEmptyAggregateIsNotAnError(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)

	author, err := svc.Assemble(context.Background(), "u1", "Nobody At All", Projection{
		Books:  true,
		Series: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nobody At All", author.Name)
	assert.Empty(t, author.Books)
	assert.Empty(t, author.Series)
}
