package comics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"noircollect/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const selectColumns = `id, title, issue_number, publisher, grade, signature_status, slab_status,
	is_key, is_owned, cover_url, barcode, notes, series, volume, release_date, synopsis,
	issue_title, variant_description, format, added_date, cover_price, cover_currency,
	page_count, age, language, country, key_reason, series_group, collection_name,
	collection_hash, quantity, cover_date, publication_date, metron_issue_id,
	metron_series_id, metadata, created_at`

// InsertColumns are the non-generated columns, in the order UpsertArgs
// produces values. Shared with the import pipeline's multi-row statements.
var InsertColumns = []string{
	"title", "issue_number", "publisher", "grade", "signature_status", "slab_status",
	"is_key", "is_owned", "cover_url", "barcode", "notes", "series", "volume",
	"release_date", "synopsis", "issue_title", "variant_description", "format",
	"added_date", "cover_price", "cover_currency", "page_count", "age", "language",
	"country", "key_reason", "series_group", "collection_name", "collection_hash",
	"quantity", "cover_date", "publication_date", "metron_issue_id", "metron_series_id",
	"metadata",
}

// UpsertSQL builds an INSERT for n rows that conflicts on the natural key
// and overwrites every non-key column unconditionally.
func UpsertSQL(n int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(InsertColumns)), ",") + ")"
	rows := make([]string, n)
	for i := range rows {
		rows[i] = row
	}

	var sets []string
	for _, col := range InsertColumns {
		switch col {
		case "title", "issue_number", "publisher", "is_owned":
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	return fmt.Sprintf(`INSERT INTO comics (%s) VALUES %s
		ON CONFLICT (title, issue_number, publisher, is_owned) DO UPDATE SET %s`,
		strings.Join(InsertColumns, ", "),
		strings.Join(rows, ","),
		strings.Join(sets, ", "))
}

// UpsertArgs flattens a record into values matching InsertColumns.
func UpsertArgs(rec *models.ComicRecord) []any {
	metadata := string(rec.Metadata)
	if metadata == "" {
		metadata = "{}"
	}
	return []any{
		rec.Title, rec.IssueNumber, rec.Publisher, rec.Grade, rec.SignatureStatus,
		rec.SlabStatus, rec.IsKey, rec.IsOwned, rec.CoverURL, rec.Barcode, rec.Notes,
		rec.Series, rec.Volume, rec.ReleaseDate, rec.Synopsis, rec.IssueTitle,
		rec.VariantDescription, rec.Format, rec.AddedDate, rec.CoverPrice,
		rec.CoverCurrency, rec.PageCount, rec.Age, rec.Language, rec.Country,
		rec.KeyReason, rec.SeriesGroup, rec.CollectionName, rec.CollectionHash,
		rec.Quantity, rec.CoverDate, rec.PublicationDate, rec.MetronIssueID,
		rec.MetronSeriesID, metadata,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComic(sc rowScanner) (*models.ComicRecord, error) {
	var (
		rec      models.ComicRecord
		metadata sql.NullString
	)
	if err := sc.Scan(
		&rec.ID, &rec.Title, &rec.IssueNumber, &rec.Publisher, &rec.Grade,
		&rec.SignatureStatus, &rec.SlabStatus, &rec.IsKey, &rec.IsOwned,
		&rec.CoverURL, &rec.Barcode, &rec.Notes, &rec.Series, &rec.Volume,
		&rec.ReleaseDate, &rec.Synopsis, &rec.IssueTitle, &rec.VariantDescription,
		&rec.Format, &rec.AddedDate, &rec.CoverPrice, &rec.CoverCurrency,
		&rec.PageCount, &rec.Age, &rec.Language, &rec.Country, &rec.KeyReason,
		&rec.SeriesGroup, &rec.CollectionName, &rec.CollectionHash, &rec.Quantity,
		&rec.CoverDate, &rec.PublicationDate, &rec.MetronIssueID, &rec.MetronSeriesID,
		&metadata, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" {
		rec.Metadata = json.RawMessage(metadata.String)
	}
	return &rec, nil
}

func (r *Repo) collect(rows *sql.Rows) ([]models.ComicRecord, error) {
	defer rows.Close()

	var out []models.ComicRecord
	for rows.Next() {
		rec, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comic: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	if out == nil {
		out = []models.ComicRecord{}
	}
	return out, nil
}

// ListByOwned returns all rows matching the ownership flag, newest first.
func (r *Repo) ListByOwned(ctx context.Context, owned bool) ([]models.ComicRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM comics
		WHERE is_owned = ?
		ORDER BY created_at DESC, id DESC
	`, owned)
	if err != nil {
		return nil, fmt.Errorf("list comics: %w", err)
	}
	return r.collect(rows)
}

// All returns the full collection, newest first. Used by export.
func (r *Repo) All(ctx context.Context) ([]models.ComicRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM comics
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("all comics: %w", err)
	}
	return r.collect(rows)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.ComicRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM comics
		WHERE id = ?
	`, id)

	rec, err := scanComic(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get comic: %w", err)
	}
	return rec, nil
}

func (r *Repo) getByNaturalKey(ctx context.Context, rec *models.ComicRecord) (*models.ComicRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM comics
		WHERE title = ? AND issue_number = ? AND publisher = ? AND is_owned = ?
	`, rec.Title, rec.IssueNumber, rec.Publisher, rec.IsOwned)

	stored, err := scanComic(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get by natural key: %w", err)
	}
	return stored, nil
}

// UpsertOne inserts or fully overwrites one record on its natural key and
// returns the stored row.
func (r *Repo) UpsertOne(ctx context.Context, rec *models.ComicRecord) (*models.ComicRecord, error) {
	if _, err := r.DB.ExecContext(ctx, UpsertSQL(1), UpsertArgs(rec)...); err != nil {
		return nil, fmt.Errorf("upsert comic: %w", err)
	}
	return r.getByNaturalKey(ctx, rec)
}

// UpdateByID overwrites the fixed editable field subset of one row.
func (r *Repo) UpdateByID(ctx context.Context, id int64, rec *models.ComicRecord) (*models.ComicRecord, error) {
	metadata := string(rec.Metadata)
	if metadata == "" {
		metadata = "{}"
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE comics SET
			title = ?,
			issue_number = ?,
			publisher = ?,
			grade = ?,
			signature_status = ?,
			slab_status = ?,
			is_key = ?,
			is_owned = ?,
			cover_url = ?,
			barcode = ?,
			notes = ?,
			series = ?,
			volume = ?,
			release_date = ?,
			synopsis = ?,
			metadata = ?
		WHERE id = ?
	`, rec.Title, rec.IssueNumber, rec.Publisher, rec.Grade, rec.SignatureStatus,
		rec.SlabStatus, rec.IsKey, rec.IsOwned, rec.CoverURL, rec.Barcode, rec.Notes,
		rec.Series, rec.Volume, rec.ReleaseDate, rec.Synopsis, metadata, id)
	if err != nil {
		return nil, fmt.Errorf("update comic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comics WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete comic: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MissingArtwork returns up to limit rows lacking a cover or synopsis,
// ordered by title then issue number. Feeds the bulk enrichment loop.
func (r *Repo) MissingArtwork(ctx context.Context, limit int) ([]models.ComicRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM comics
		WHERE cover_url IS NULL OR synopsis IS NULL
		ORDER BY title, issue_number
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("missing artwork: %w", err)
	}
	return r.collect(rows)
}

// SetArtwork fills cover and/or synopsis on one row. Nil arguments leave
// the stored value untouched; enrichment never overwrites existing data.
func (r *Repo) SetArtwork(ctx context.Context, id int64, coverURL, synopsis *string) error {
	if coverURL == nil && synopsis == nil {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE comics SET
			cover_url = COALESCE(cover_url, ?),
			synopsis = COALESCE(synopsis, ?)
		WHERE id = ?
	`, coverURL, synopsis, id)
	if err != nil {
		return fmt.Errorf("set artwork: %w", err)
	}
	return nil
}
