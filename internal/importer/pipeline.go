package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

// chunkSize bounds the number of rows per upsert statement so a large
// import stays under the driver's bind-variable limit.
const chunkSize = 300

// Pipeline runs the import/merge/dedupe sequence: normalize, in-batch
// dedupe by natural key, chunked upsert inside one transaction, a
// storage-wide duplicate sweep, and the series-to-title backfill.
type Pipeline struct {
	DB  *sql.DB
	Log *slog.Logger
}

func NewPipeline(db *sql.DB, log *slog.Logger) *Pipeline {
	return &Pipeline{DB: db, Log: log}
}

// Result summarizes one import run.
type Result struct {
	Inserted int  `json:"inserted"`
	Total    int  `json:"total"`
	Replaced bool `json:"replaced"`
}

// Run imports the given canonical records. With replace set, existing
// storage is cleared first. The whole run executes in one transaction, so
// a failed batch leaves storage untouched.
func (p *Pipeline) Run(ctx context.Context, records []models.ComicRecord, replace bool) (Result, error) {
	unique := dedupe(records)
	res := Result{Total: len(unique), Replaced: replace}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comics`); err != nil {
			return res, fmt.Errorf("clear comics: %w", err)
		}
	}

	for start := 0; start < len(unique); start += chunkSize {
		end := start + chunkSize
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]

		args := make([]any, 0, len(batch)*len(comics.InsertColumns))
		for i := range batch {
			args = append(args, comics.UpsertArgs(&batch[i])...)
		}

		out, err := tx.ExecContext(ctx, comics.UpsertSQL(len(batch)), args...)
		if err != nil {
			return res, fmt.Errorf("upsert batch: %w", err)
		}
		n, _ := out.RowsAffected()
		res.Inserted += int(n)
	}

	if err := sweepDuplicates(ctx, tx); err != nil {
		return res, err
	}
	if err := backfillTitles(ctx, tx); err != nil {
		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit import tx: %w", err)
	}

	p.Log.Info("import finished",
		"inserted", res.Inserted, "total", res.Total, "replaced", replace)
	return res, nil
}

// dedupe collapses the batch by natural key, last write wins, preserving
// first-seen order.
func dedupe(records []models.ComicRecord) []models.ComicRecord {
	byKey := make(map[string]int, len(records))
	out := make([]models.ComicRecord, 0, len(records))
	for i := range records {
		key := records[i].NaturalKey()
		if idx, ok := byKey[key]; ok {
			out[idx] = records[i]
			continue
		}
		byKey[key] = len(out)
		out = append(out, records[i])
	}
	return out
}

// sweepDuplicates removes residual duplicate rows not caught by the
// batch-level upsert (e.g. from concurrent imports), keeping the
// earliest-created row of every natural-key group.
func sweepDuplicates(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM comics
		WHERE id IN (
			SELECT id FROM (
				SELECT id,
					row_number() OVER (
						PARTITION BY title, issue_number, publisher, is_owned
						ORDER BY created_at ASC, id ASC
					) AS rn
				FROM comics
			)
			WHERE rn > 1
		)
	`)
	if err != nil {
		return fmt.Errorf("dedupe sweep: %w", err)
	}
	return nil
}

// backfillTitles overwrites title with the series name wherever they
// differ, unless doing so would collide with another row on the same
// natural key. Idempotent.
func backfillTitles(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE comics
		SET title = series
		WHERE series IS NOT NULL
			AND series <> ''
			AND title <> series
			AND NOT EXISTS (
				SELECT 1 FROM comics c2
				WHERE c2.title = comics.series
					AND c2.issue_number = comics.issue_number
					AND c2.publisher = comics.publisher
					AND c2.is_owned = comics.is_owned
					AND c2.id <> comics.id
			)
	`)
	if err != nil {
		return fmt.Errorf("backfill titles: %w", err)
	}
	return nil
}
