package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noircollect/internal/comics"
	"noircollect/pkg/database"
	"noircollect/pkg/models"
)

func testPipeline(t *testing.T) (*Pipeline, *comics.Repo) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(db, log), comics.NewRepo(db)
}

func record(title, issue, publisher string, owned bool) models.ComicRecord {
	return models.ComicRecord{
		Title:           title,
		IssueNumber:     issue,
		Publisher:       publisher,
		IsOwned:         owned,
		SignatureStatus: "none",
		SlabStatus:      "raw",
		Metadata:        json.RawMessage("{}"),
	}
}

func TestRunInsertsAndDedupesBatch(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	grade1, grade2 := "9.0", "9.8"
	a := record("Batman", "1", "DC", true)
	a.Grade = &grade1
	b := record("Batman", "1", "DC", true)
	b.Grade = &grade2

	res, err := p.Run(ctx, []models.ComicRecord{a, b, record("Saga", "1", "Image", true)}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total, "in-batch duplicates collapse before insert")
	assert.False(t, res.Replaced)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, rec := range rows {
		if rec.Title == "Batman" {
			require.NotNil(t, rec.Grade)
			assert.Equal(t, "9.8", *rec.Grade, "last duplicate wins")
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	batch := []models.ComicRecord{
		record("Batman", "1", "DC", true),
		record("Saga", "1", "Image", true),
	}

	_, err := p.Run(ctx, batch, false)
	require.NoError(t, err)
	_, err = p.Run(ctx, batch, false)
	require.NoError(t, err)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "re-importing the same batch adds nothing")
}

func TestRunReplaceClearsExistingRows(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	_, err := p.Run(ctx, []models.ComicRecord{record("Old", "1", "DC", true)}, false)
	require.NoError(t, err)

	res, err := p.Run(ctx, []models.ComicRecord{record("New", "1", "DC", true)}, true)
	require.NoError(t, err)
	assert.True(t, res.Replaced)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "New", rows[0].Title)
}

func TestRunSameIssueDifferentOwnership(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	_, err := p.Run(ctx, []models.ComicRecord{
		record("Batman", "1", "DC", true),
		record("Batman", "1", "DC", false),
	}, false)
	require.NoError(t, err)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "ownership is part of the identity")
}

func TestRunBackfillsTitleFromSeries(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	series := "Batman"
	rec := record("The Court of Owls", "1", "DC", true)
	rec.Series = &series

	_, err := p.Run(ctx, []models.ComicRecord{rec}, false)
	require.NoError(t, err)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Batman", rows[0].Title)
}

func TestRunBackfillSkipsOnCollision(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	series := "Batman"
	renamed := record("The Court of Owls", "1", "DC", true)
	renamed.Series = &series

	_, err := p.Run(ctx, []models.ComicRecord{
		record("Batman", "1", "DC", true),
		renamed,
	}, false)
	require.NoError(t, err)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	titles := map[string]bool{}
	for _, r := range rows {
		titles[r.Title] = true
	}
	assert.True(t, titles["Batman"])
	assert.True(t, titles["The Court of Owls"], "backfill must not create a duplicate key")
}

func TestRunEmptyBatchLeavesRowsAlone(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	_, err := p.Run(ctx, []models.ComicRecord{record("Batman", "1", "DC", true)}, false)
	require.NoError(t, err)

	// The sweep and backfill still run; they must not disturb clean rows.
	res, err := p.Run(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRunChunksLargeBatches(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	batch := make([]models.ComicRecord, 0, chunkSize+50)
	for i := 0; i < chunkSize+50; i++ {
		batch = append(batch, record("Series X", comics.AsString(float64(i+1)), "DC", true))
	}

	res, err := p.Run(ctx, batch, false)
	require.NoError(t, err)
	assert.Equal(t, chunkSize+50, res.Total)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, chunkSize+50)
}

func TestCoalesceUpdatePreservesAbsentFields(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	grade := "9.8"
	rec := record("Batman", "1", "DC", true)
	rec.Grade = &grade
	_, err := p.Run(ctx, []models.ComicRecord{rec}, false)
	require.NoError(t, err)

	res, err := p.CoalesceUpdate(ctx, []comics.Entry{{
		Title:       "Batman",
		IssueNumber: "1",
		Publisher:   "DC",
		Notes:       "bought at auction",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, res.NotFound)
	assert.Equal(t, 1, res.Total)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NotNil(t, rows[0].Grade)
	assert.Equal(t, "9.8", *rows[0].Grade, "absent field keeps stored value")
	require.NotNil(t, rows[0].Notes)
	assert.Equal(t, "bought at auction", *rows[0].Notes)
}

func TestCoalesceUpdateCountsMissingRows(t *testing.T) {
	p, _ := testPipeline(t)
	ctx := context.Background()

	res, err := p.CoalesceUpdate(ctx, []comics.Entry{
		{Title: "Nobody", IssueNumber: "99", Publisher: "DC"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.NotFound)
	assert.Equal(t, 1, res.Total)
}

func TestCoalesceUpdateNormalizesIssueNumber(t *testing.T) {
	p, repo := testPipeline(t)
	ctx := context.Background()

	_, err := p.Run(ctx, []models.ComicRecord{record("Batman", "1", "DC", true)}, false)
	require.NoError(t, err)

	res, err := p.CoalesceUpdate(ctx, []comics.Entry{{
		Title:       "Batman",
		IssueNumber: "#1",
		Publisher:   "DC",
		Grade:       "9.0",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	rows, err := repo.All(ctx)
	require.NoError(t, err)
	require.NotNil(t, rows[0].Grade)
	assert.Equal(t, "9.0", *rows[0].Grade)
}
