package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(Config{Path: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE things (
			id TEXT PRIMARY KEY,
			name TEXT,
			note TEXT
		)
	`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO things (id, name, note) VALUES ('t1', 'old', 'keep')`)
	require.NoError(t, err)
	return db
}

func TestApplyEmptyChangesetIsNoOp(t *testing.T) {
	db := newTestDB(t)

	cs := &Changeset{}
	ok, err := cs.Apply(context.Background(), db, "things", "id", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM things WHERE id = 't1'`).Scan(&name))
	assert.Equal(t, "old", name)
}

func TestApplyWritesOnlyTaggedColumns(t *testing.T) {
	db := newTestDB(t)

	cs := &Changeset{}
	cs.Set("name", "new")
	require.Equal(t, 1, cs.Len())

	ok, err := cs.Apply(context.Background(), db, "things", "id", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	var name, note string
	require.NoError(t, db.QueryRow(`SELECT name, note FROM things WHERE id = 't1'`).Scan(&name, &note))
	assert.Equal(t, "new", name)
	assert.Equal(t, "keep", note)
}

func TestApplySetNilClearsColumn(t *testing.T) {
	db := newTestDB(t)

	cs := &Changeset{}
	cs.Set("note", nil)
	ok, err := cs.Apply(context.Background(), db, "things", "id", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	var note sql.NullString
	require.NoError(t, db.QueryRow(`SELECT note FROM things WHERE id = 't1'`).Scan(&note))
	assert.False(t, note.Valid)
}

func TestApplyReportsMissingRow(t *testing.T) {
	db := newTestDB(t)

	cs := &Changeset{}
	cs.Set("name", "new")
	ok, err := cs.Apply(context.Background(), db, "things", "id", "no-such-row")
	require.NoError(t, err)
	assert.False(t, ok)
}
