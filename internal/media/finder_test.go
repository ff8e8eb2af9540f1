package media

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/pkg/database"
	"bookhub/pkg/liberr"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	// a fresh pool connection would get its own empty in-memory db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.MigrateFrom(db, "../../docs/schema.sql"))
	return db
}

func seedUser(t *testing.T, db *sql.DB, id string, ageRestriction *int) {
	t.Helper()
	var restriction any
	if ageRestriction != nil {
		restriction = *ageRestriction
	}
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash, age_restriction)
		VALUES (?, ?, ?, 'x', ?)
	`, id, "user-"+id, id+"@example.com", restriction)
	require.NoError(t, err)
}

func seedLibrary(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO libraries (id, name, path) VALUES (?, ?, ?)
	`, id, "lib-"+id, "/data/"+id)
	require.NoError(t, err)
}

func seedMedia(t *testing.T, db *sql.DB, id, libraryID, title, series, writers string, ageRating *int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO media (id, library_id, name, path) VALUES (?, ?, ?, ?)
	`, id, libraryID, id+".cbz", "/data/"+id+".cbz")
	require.NoError(t, err)

	var rating any
	if ageRating != nil {
		rating = *ageRating
	}
	_, err = db.Exec(`
		INSERT INTO media_metadata (media_id, title, series, writers, age_rating)
		VALUES (?, ?, ?, ?, ?)
	`, id, title, series, writers, rating)
	require.NoError(t, err)
}

func excludeUser(t *testing.T, db *sql.DB, libraryID, userID string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO library_exclusions (library_id, user_id) VALUES (?, ?)
	`, libraryID, userID)
	require.NoError(t, err)
}

func TestVisibleUnknownUser(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)

	q, err := finder.Visible(context.Background(), "no-such-user")
	assert.Nil(t, q)
	assert.ErrorIs(t, err, liberr.ErrUnauthorizedScope)
}

func TestWriterContainsRespectsScope(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	seedUser(t, db, "u1", nil)
	seedUser(t, db, "u2", nil)
	seedLibrary(t, db, "lib1")
	seedLibrary(t, db, "lib2")

	// u1 cannot see lib2
	excludeUser(t, db, "lib2", "u1")

	seedMedia(t, db, "m1", "lib1", "Watchmen #1", "Watchmen", "Alan Moore, Dave Gibbons", nil)
	seedMedia(t, db, "m2", "lib1", "Watchmen #2", "Watchmen", "Alan Moore, Dave Gibbons", nil)
	seedMedia(t, db, "m3", "lib2", "Hidden Book", "Secret", "Steve Moore", nil)

	q1, err := finder.Visible(ctx, "u1")
	require.NoError(t, err)

	books, err := finder.Find(ctx, q1.WriterContains("Moore"))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "m1", books[0].ID)
	assert.Equal(t, "m2", books[1].ID)

	// u2 has no exclusions and sees all three
	q2, err := finder.Visible(ctx, "u2")
	require.NoError(t, err)
	books, err = finder.Find(ctx, q2.WriterContains("Moore"))
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestWriterContainsIsCaseSensitiveSubstring(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	seedUser(t, db, "u1", nil)
	seedLibrary(t, db, "lib1")
	seedMedia(t, db, "m1", "lib1", "Some Book", "", "Anna Smith", nil)

	q, err := finder.Visible(ctx, "u1")
	require.NoError(t, err)

	// accepted false positive of the substring baseline: "Ann" is
	// contained in "Anna Smith"
	books, err := finder.Find(ctx, q.WriterContains("Ann"))
	require.NoError(t, err)
	assert.Len(t, books, 1)

	// matching is case-sensitive
	books, err = finder.Find(ctx, q.WriterContains("anna"))
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestEmptyMatchIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	seedUser(t, db, "u1", nil)

	q, err := finder.Visible(ctx, "u1")
	require.NoError(t, err)

	books, err := finder.Find(ctx, q.WriterContains("Nobody"))
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestChainingDoesNotMutateHandle(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	seedUser(t, db, "u1", nil)
	seedLibrary(t, db, "lib1")
	seedMedia(t, db, "m1", "lib1", "A", "S1", "Alan Moore", nil)
	seedMedia(t, db, "m2", "lib1", "B", "S2", "Grant Morrison", nil)

	q, err := finder.Visible(ctx, "u1")
	require.NoError(t, err)

	narrowed := q.WriterContains("Moore")
	books, err := finder.Find(ctx, narrowed)
	require.NoError(t, err)
	assert.Len(t, books, 1)

	// the original handle still sees everything
	all, err := finder.Find(ctx, q)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAgeRestrictionHidesUnratedAndAboveLimit(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	limit := 12
	seedUser(t, db, "kid", &limit)
	seedLibrary(t, db, "lib1")

	ten := 10
	eighteen := 18
	seedMedia(t, db, "m1", "lib1", "All Ages", "", "Alan Moore", &ten)
	seedMedia(t, db, "m2", "lib1", "Mature", "", "Alan Moore", &eighteen)
	seedMedia(t, db, "m3", "lib1", "Unrated", "", "Alan Moore", nil)

	q, err := finder.Visible(ctx, "kid")
	require.NoError(t, err)

	books, err := finder.Find(ctx, q.WriterContains("Moore"))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "m1", books[0].ID)
}

func TestDistinctSeriesTitlesStableLexicographicOrder(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	seedUser(t, db, "u1", nil)
	seedLibrary(t, db, "lib1")
	seedMedia(t, db, "m1", "lib1", "B1", "Zenith", "Grant Morrison", nil)
	seedMedia(t, db, "m2", "lib1", "B2", "Animal Man", "Grant Morrison", nil)
	seedMedia(t, db, "m3", "lib1", "B3", "Animal Man", "Grant Morrison", nil)
	seedMedia(t, db, "m4", "lib1", "B4", "", "Grant Morrison", nil)

	q, err := finder.Visible(ctx, "u1")
	require.NoError(t, err)

	titles, err := finder.DistinctSeriesTitles(ctx, q.WriterContains("Morrison"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Animal Man", "Zenith"}, titles)

	// repeated call against unchanged data returns the same order
	again, err := finder.DistinctSeriesTitles(ctx, q.WriterContains("Morrison"))
	require.NoError(t, err)
	assert.Equal(t, titles, again)
}

func TestGetByIDOutsideScopeIsNotFound(t *testing.T) {
	db := newTestDB(t)
	finder := NewFinder(db)
	ctx := context.Background()

	seedUser(t, db, "u1", nil)
	seedLibrary(t, db, "lib1")
	seedLibrary(t, db, "lib2")
	excludeUser(t, db, "lib2", "u1")
	seedMedia(t, db, "m1", "lib2", "Hidden", "", "", nil)

	q, err := finder.Visible(ctx, "u1")
	require.NoError(t, err)

	m, err := finder.GetByID(ctx, q, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)
}
