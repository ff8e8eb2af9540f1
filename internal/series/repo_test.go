package series

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

func TestCreateLeavesAbsentFieldsNull(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	sm, err := repo.Create(ctx, MetadataInput{
		Title:     strp("Watchmen"),
		Publisher: strp("DC Comics"),
	})
	require.NoError(t, err)
	require.NotNil(t, sm)

	assert.Equal(t, "Watchmen", sm.Title)
	assert.Equal(t, "DC Comics", sm.Publisher)
	assert.Empty(t, sm.Status)
	assert.Nil(t, sm.Volume)
	assert.Nil(t, sm.AgeRating)
}

func TestUpdateTouchesOnlyPresentFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	sm, err := repo.Create(ctx, MetadataInput{
		Title:     strp("Watchmen"),
		Publisher: strp("DC Comics"),
		Status:    strp("continuing"),
	})
	require.NoError(t, err)

	ok, err := repo.Update(ctx, sm.ID, MetadataInput{
		Title:  strp("Watchmen"),
		Status: strp("Ended"),
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, sm.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Watchmen", got.Title)
	assert.Equal(t, "ended", got.Status)
	// untouched field survives
	assert.Equal(t, "DC Comics", got.Publisher)
}

func TestUpdateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	sm, err := repo.Create(ctx, MetadataInput{Title: strp("Saga")})
	require.NoError(t, err)

	in := MetadataInput{Status: strp("continuing"), Volume: intp(2)}

	for i := 0; i < 2; i++ {
		ok, err := repo.Update(ctx, sm.ID, in)
		require.NoError(t, err)
		require.True(t, ok)
	}

	got, err := repo.GetByID(ctx, sm.ID)
	require.NoError(t, err)
	assert.Equal(t, "continuing", got.Status)
	require.NotNil(t, got.Volume)
	assert.Equal(t, 2, *got.Volume)
}

func TestUpdateExplicitEmptyClearsField(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	sm, err := repo.Create(ctx, MetadataInput{
		Title:   strp("Saga"),
		Summary: strp("space opera"),
	})
	require.NoError(t, err)

	ok, err := repo.Update(ctx, sm.ID, MetadataInput{Summary: strp("")})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, sm.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Summary)
	assert.Equal(t, "Saga", got.Title)
}

func TestUpdateAllLeaveIsNoOp(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	sm, err := repo.Create(ctx, MetadataInput{Title: strp("Saga")})
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, sm.ID)
	require.NoError(t, err)

	ok, err := repo.Update(ctx, sm.ID, MetadataInput{})
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := repo.GetByID(ctx, sm.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// all-leave against a missing record reports absence
	ok, err = repo.Update(ctx, "no-such-id", MetadataInput{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUnknownIDReturnsFalse(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)

	ok, err := repo.Update(context.Background(), "no-such-id", MetadataInput{Title: strp("X")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateInvalidValueWritesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	sm, err := repo.Create(ctx, MetadataInput{
		Title:  strp("Saga"),
		Status: strp("continuing"),
	})
	require.NoError(t, err)

	// title is valid but status is not: the whole update must fail
	ok, err := repo.Update(ctx, sm.ID, MetadataInput{
		Title:  strp("Renamed"),
		Status: strp("paused"),
	})
	assert.False(t, ok)
	assert.True(t, liberr.IsInvalidFieldValue(err))

	got, err := repo.GetByID(ctx, sm.ID)
	require.NoError(t, err)
	assert.Equal(t, "Saga", got.Title)
	assert.Equal(t, "continuing", got.Status)
}

func TestGetByTitleExactMatchOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, MetadataInput{Title: strp("Animal Man")})
	require.NoError(t, err)

	got, err := repo.GetByTitle(ctx, "Animal Man")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Animal Man", got.Title)

	got, err = repo.GetByTitle(ctx, "Animal")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for _, title := range []string{"Animal Man", "Zenith", "Animal Castle"} {
		_, err := repo.Create(ctx, MetadataInput{Title: strp(title)})
		require.NoError(t, err)
	}

	items, total, err := repo.List(ctx, "animal", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Animal Castle", items[0].Title)
	assert.Equal(t, "Animal Man", items[1].Title)

	items, total, err = repo.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)
}
