package comics

import (
	"encoding/json"
	"strings"

	"noircollect/pkg/models"
)

// Entry is one incoming record from a JSON import, update or create
// request. Clients send camelCase but several fields also arrive in
// snake_case from CSV-derived tooling, so those carry a fallback alias.
// Numeric fields are typed any because they arrive as numbers or strings
// interchangeably; the normalizer sorts them out.
type Entry struct {
	Title           string  `json:"title"`
	Series          string  `json:"series"`
	IssueNumber     any     `json:"issueNumber"`
	IssueNumberAlt  any     `json:"issue_number"`
	Publisher       string  `json:"publisher"`
	Grade           string  `json:"grade"`
	SignatureStatus string  `json:"signatureStatus"`
	SlabStatus      string  `json:"slabStatus"`
	IsKey           *bool   `json:"isKey"`
	IsOwned         *bool   `json:"isOwned"`
	CoverURL        string  `json:"coverUrl"`
	Barcode         string  `json:"barcode"`
	Notes           string  `json:"notes"`
	Volume          string  `json:"volume"`
	Synopsis        string  `json:"synopsis"`

	ReleaseDate    any `json:"releaseDate"`
	ReleaseDateAlt any `json:"release_date"`

	IssueTitle    string `json:"issueTitle"`
	IssueTitleAlt string `json:"issue_title"`

	VariantDescription    string `json:"variantDescription"`
	VariantDescriptionAlt string `json:"variant_description"`

	Format string `json:"format"`

	AddedDate    any `json:"addedDate"`
	AddedDateAlt any `json:"added_date"`

	CoverPrice    any `json:"coverPrice"`
	CoverPriceAlt any `json:"cover_price"`

	CoverCurrency    string `json:"coverCurrency"`
	CoverCurrencyAlt string `json:"cover_currency"`

	PageCount    any `json:"pageCount"`
	PageCountAlt any `json:"page_count"`

	Age      string `json:"age"`
	Language string `json:"language"`
	Country  string `json:"country"`

	KeyReason    string `json:"keyReason"`
	KeyReasonAlt string `json:"key_reason"`

	SeriesGroup    string `json:"seriesGroup"`
	SeriesGroupAlt string `json:"series_group"`

	CollectionName    string `json:"collectionName"`
	CollectionNameAlt string `json:"collection_name"`

	CollectionHash    string `json:"collectionHash"`
	CollectionHashAlt string `json:"collection_hash"`

	Quantity any `json:"quantity"`

	CoverDate    any `json:"coverDate"`
	CoverDateAlt any `json:"cover_date"`

	PublicationDate    any `json:"publicationDate"`
	PublicationDateAlt any `json:"publication_date"`

	MetronIssueID     any `json:"metronIssueId"`
	MetronIssueIDAlt  any `json:"metron_issue_id"`
	MetronSeriesID    any `json:"metronSeriesId"`
	MetronSeriesIDAlt any `json:"metron_series_id"`

	Metadata json.RawMessage `json:"metadata"`
}

// Record normalizes the entry into the canonical shape with import
// defaults filled in: missing ownership means owned, missing statuses get
// their zero enum values.
func (e *Entry) Record() models.ComicRecord {
	return models.ComicRecord{
		Title:              strings.TrimSpace(e.Title),
		Series:             optStr(e.Series),
		IssueNumber:        NormalizeIssueNumber(pick(e.IssueNumber, e.IssueNumberAlt)),
		Publisher:          strings.TrimSpace(e.Publisher),
		Grade:              optStr(e.Grade),
		SignatureStatus:    defaultStr(e.SignatureStatus, "none"),
		SlabStatus:         defaultStr(e.SlabStatus, "raw"),
		IsKey:              e.IsKey != nil && *e.IsKey,
		IsOwned:            e.IsOwned == nil || *e.IsOwned,
		CoverURL:           optStr(e.CoverURL),
		Barcode:            optStr(e.Barcode),
		Notes:              optStr(e.Notes),
		Volume:             optStr(e.Volume),
		Synopsis:           optStr(e.Synopsis),
		ReleaseDate:        ParseReleaseDate(pick(e.ReleaseDate, e.ReleaseDateAlt)),
		IssueTitle:         optStr(firstStr(e.IssueTitle, e.IssueTitleAlt)),
		VariantDescription: optStr(firstStr(e.VariantDescription, e.VariantDescriptionAlt)),
		Format:             optStr(e.Format),
		AddedDate:          ParseReleaseDate(pick(e.AddedDate, e.AddedDateAlt)),
		CoverPrice:         ParseNumber(pick(e.CoverPrice, e.CoverPriceAlt)),
		CoverCurrency:      optStr(firstStr(e.CoverCurrency, e.CoverCurrencyAlt)),
		PageCount:          ParseInt(pick(e.PageCount, e.PageCountAlt)),
		Age:                optStr(e.Age),
		Language:           optStr(e.Language),
		Country:            optStr(e.Country),
		KeyReason:          optStr(firstStr(e.KeyReason, e.KeyReasonAlt)),
		SeriesGroup:        optStr(firstStr(e.SeriesGroup, e.SeriesGroupAlt)),
		CollectionName:     optStr(firstStr(e.CollectionName, e.CollectionNameAlt)),
		CollectionHash:     optStr(firstStr(e.CollectionHash, e.CollectionHashAlt)),
		Quantity:           ParseInt(e.Quantity),
		CoverDate:          ParseReleaseDate(pick(e.CoverDate, e.CoverDateAlt)),
		PublicationDate:    ParseReleaseDate(pick(e.PublicationDate, e.PublicationDateAlt)),
		MetronIssueID:      ParseInt(pick(e.MetronIssueID, e.MetronIssueIDAlt)),
		MetronSeriesID:     ParseInt(pick(e.MetronSeriesID, e.MetronSeriesIDAlt)),
		Metadata:           metadataOrEmpty(e.Metadata),
	}
}

// NaturalKeyRecord extracts just the natural-key fields, normalized the
// same way Record normalizes them. isOwned defaults to true when absent;
// it is part of the key, so unlike other fields it can never be sparse.
func (e *Entry) NaturalKeyRecord() models.ComicRecord {
	return models.ComicRecord{
		Title:       strings.TrimSpace(e.Title),
		IssueNumber: NormalizeIssueNumber(pick(e.IssueNumber, e.IssueNumberAlt)),
		Publisher:   strings.TrimSpace(e.Publisher),
		IsOwned:     e.IsOwned == nil || *e.IsOwned,
	}
}

// PatchColumns lists the non-key columns a sparse update may touch, in
// the order PatchArgs produces values.
var PatchColumns = []string{
	"grade", "signature_status", "slab_status", "is_key", "cover_url",
	"barcode", "notes", "series", "volume", "release_date", "synopsis",
	"issue_title", "variant_description", "format", "added_date",
	"cover_price", "cover_currency", "page_count", "age", "language",
	"country", "key_reason", "series_group", "collection_name",
	"collection_hash", "quantity", "cover_date", "publication_date",
	"metron_issue_id", "metron_series_id", "metadata",
}

// PatchArgs returns the entry's values for PatchColumns. Absent fields
// come back nil so a COALESCE update leaves the stored value alone.
func (e *Entry) PatchArgs() []any {
	var metadata *string
	if len(e.Metadata) > 0 && string(e.Metadata) != "null" {
		m := string(e.Metadata)
		metadata = &m
	}
	return []any{
		optStr(e.Grade),
		optStr(e.SignatureStatus),
		optStr(e.SlabStatus),
		e.IsKey,
		optStr(e.CoverURL),
		optStr(e.Barcode),
		optStr(e.Notes),
		optStr(e.Series),
		optStr(e.Volume),
		ParseReleaseDate(pick(e.ReleaseDate, e.ReleaseDateAlt)),
		optStr(e.Synopsis),
		optStr(firstStr(e.IssueTitle, e.IssueTitleAlt)),
		optStr(firstStr(e.VariantDescription, e.VariantDescriptionAlt)),
		optStr(e.Format),
		ParseReleaseDate(pick(e.AddedDate, e.AddedDateAlt)),
		ParseNumber(pick(e.CoverPrice, e.CoverPriceAlt)),
		optStr(firstStr(e.CoverCurrency, e.CoverCurrencyAlt)),
		ParseInt(pick(e.PageCount, e.PageCountAlt)),
		optStr(e.Age),
		optStr(e.Language),
		optStr(e.Country),
		optStr(firstStr(e.KeyReason, e.KeyReasonAlt)),
		optStr(firstStr(e.SeriesGroup, e.SeriesGroupAlt)),
		optStr(firstStr(e.CollectionName, e.CollectionNameAlt)),
		optStr(firstStr(e.CollectionHash, e.CollectionHashAlt)),
		ParseInt(e.Quantity),
		ParseReleaseDate(pick(e.CoverDate, e.CoverDateAlt)),
		ParseReleaseDate(pick(e.PublicationDate, e.PublicationDateAlt)),
		ParseInt(pick(e.MetronIssueID, e.MetronIssueIDAlt)),
		ParseInt(pick(e.MetronSeriesID, e.MetronSeriesIDAlt)),
		metadata,
	}
}

func metadataOrEmpty(m json.RawMessage) json.RawMessage {
	if len(m) == 0 || string(m) == "null" {
		return json.RawMessage("{}")
	}
	return m
}

// pick returns the first usable value of an aliased pair. Empty strings
// count as absent so snake_case fallbacks still apply.
func pick(a, b any) any {
	if s, ok := a.(string); ok && strings.TrimSpace(s) == "" {
		a = nil
	}
	if a != nil {
		return a
	}
	return b
}

func firstStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func defaultStr(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
