package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ComicRecord is the canonical stored form of one comic. External sources
// and import formats are mapped into this structure first, then written to
// the DB from this representation. JSON field names match the stored column
// names, which is what the REST surface returns.
type ComicRecord struct {
	ID          int64  `json:"id" xml:"id"`
	Title       string `json:"title" xml:"title"`
	Series      *string `json:"series" xml:"series,omitempty"`
	IssueNumber string  `json:"issue_number" xml:"issue_number"`

	// Publisher is part of the natural key and is stored as "" when
	// unknown, so the unique index fires for publisher-less rows too.
	Publisher string `json:"publisher" xml:"publisher,omitempty"`

	Grade           *string `json:"grade" xml:"grade,omitempty"`
	SignatureStatus string  `json:"signature_status" xml:"signature_status"`
	SlabStatus      string  `json:"slab_status" xml:"slab_status"`
	IsKey           bool    `json:"is_key" xml:"is_key"`
	IsOwned         bool    `json:"is_owned" xml:"is_owned"`

	CoverURL *string `json:"cover_url" xml:"cover_url,omitempty"`
	Barcode  *string `json:"barcode" xml:"barcode,omitempty"`
	Notes    *string `json:"notes" xml:"notes,omitempty"`
	Volume   *string `json:"volume" xml:"volume,omitempty"`

	// Dates are canonical ISO YYYY-MM-DD strings (see comics.ParseReleaseDate).
	ReleaseDate     *string `json:"release_date" xml:"release_date,omitempty"`
	CoverDate       *string `json:"cover_date" xml:"cover_date,omitempty"`
	PublicationDate *string `json:"publication_date" xml:"publication_date,omitempty"`
	AddedDate       *string `json:"added_date" xml:"added_date,omitempty"`

	Synopsis           *string  `json:"synopsis" xml:"synopsis,omitempty"`
	IssueTitle         *string  `json:"issue_title" xml:"issue_title,omitempty"`
	VariantDescription *string  `json:"variant_description" xml:"variant_description,omitempty"`
	Format             *string  `json:"format" xml:"format,omitempty"`
	CoverPrice         *float64 `json:"cover_price" xml:"cover_price,omitempty"`
	CoverCurrency      *string  `json:"cover_currency" xml:"cover_currency,omitempty"`
	PageCount          *int64   `json:"page_count" xml:"page_count,omitempty"`
	Age                *string  `json:"age" xml:"age,omitempty"`
	Language           *string  `json:"language" xml:"language,omitempty"`
	Country            *string  `json:"country" xml:"country,omitempty"`
	KeyReason          *string  `json:"key_reason" xml:"key_reason,omitempty"`
	SeriesGroup        *string  `json:"series_group" xml:"series_group,omitempty"`
	CollectionName     *string  `json:"collection_name" xml:"collection_name,omitempty"`
	CollectionHash     *string  `json:"collection_hash" xml:"collection_hash,omitempty"`
	Quantity           *int64   `json:"quantity" xml:"quantity,omitempty"`

	MetronIssueID  *int64 `json:"metron_issue_id" xml:"metron_issue_id,omitempty"`
	MetronSeriesID *int64 `json:"metron_series_id" xml:"metron_series_id,omitempty"`

	// Metadata is the opaque payload from whichever provider or import
	// source produced the record.
	Metadata json.RawMessage `json:"metadata,omitempty" xml:"-"`

	CreatedAt time.Time `json:"created_at" xml:"-"`
}

// NaturalKey identifies a unique stored record: two records differing only
// by ownership flag (wishlist vs. collection) are distinct entities.
func (c *ComicRecord) NaturalKey() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%t", c.Title, c.IssueNumber, c.Publisher, c.IsOwned)
}

// DisplayTitle prefers the series name over the stored title.
func (c *ComicRecord) DisplayTitle() string {
	if c.Series != nil && *c.Series != "" {
		return *c.Series
	}
	return c.Title
}

// Candidate is the provider-agnostic result of a metadata search. It is
// never persisted as-is; only selected fields flow into a ComicRecord.
type Candidate struct {
	Title          string          `json:"title"`
	IssueNumber    string          `json:"issueNumber"`
	Publisher      string          `json:"publisher"`
	CoverURL       string          `json:"coverUrl"`
	Synopsis       string          `json:"synopsis"`
	MetronIssueID  int64           `json:"metronIssueId,omitempty"`
	MetronSeriesID int64           `json:"metronSeriesId,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Source         string          `json:"source"`
}
