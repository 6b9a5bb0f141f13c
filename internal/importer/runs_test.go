package importer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/pkg/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE import_runs (
			id            TEXT PRIMARY KEY,
			operator_id   TEXT NOT NULL,
			collection_id TEXT NOT NULL,
			mode          TEXT NOT NULL,
			live          INTEGER NOT NULL DEFAULT 0,
			total         INTEGER NOT NULL,
			created       INTEGER NOT NULL,
			updated       INTEGER NOT NULL,
			failed        INTEGER NOT NULL,
			errors_json   TEXT NOT NULL DEFAULT '[]',
			started_at    TIMESTAMP NOT NULL,
			finished_at   TIMESTAMP NOT NULL
		);
	`)
	require.NoError(t, err)
	return db
}

func TestRunRepoRoundTrip(t *testing.T) {
	repo := NewRunRepo(testDB(t))
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	run := models.ImportRun{
		ID:           "run-1",
		OperatorID:   "op-1",
		CollectionID: "col-1",
		Mode:         "upsert",
		Live:         true,
		Total:        10,
		Created:      4,
		Updated:      5,
		Failed:       1,
		Errors:       []models.RowError{{Index: 7, Message: "validation failed"}},
		StartedAt:    started,
		FinishedAt:   started.Add(30 * time.Second),
	}
	require.NoError(t, repo.Insert(ctx, run))

	got, err := repo.Get(ctx, "run-1", "op-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "upsert", got.Mode)
	assert.True(t, got.Live)
	assert.Equal(t, 10, got.Total)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 7, got.Errors[0].Index)
}

func TestRunRepoGetScopedToOperator(t *testing.T) {
	repo := NewRunRepo(testDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, models.ImportRun{
		ID: "run-1", OperatorID: "op-1", CollectionID: "col-1", Mode: "create",
		StartedAt: now, FinishedAt: now,
	}))

	got, err := repo.Get(ctx, "run-1", "someone-else")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunRepoListNewestFirst(t *testing.T) {
	repo := NewRunRepo(testDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, repo.Insert(ctx, models.ImportRun{
			ID: id, OperatorID: "op-1", CollectionID: "col-1", Mode: "upsert",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := repo.List(ctx, "op-1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
}
