package clz

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

// ParseCSV decodes a CLZ CSV export back into canonical records, the
// inverse of BuildCSV. Column order is irrelevant; columns are matched by
// header name, unknown columns are ignored, and rows without a series or
// issue are skipped.
func ParseCSV(r io.Reader) ([]models.ComicRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = idx
	}

	var records []models.ComicRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		title := field("series")
		issue := comics.NormalizeIssueNumber(field("issue"))
		if title == "" && issue == "" {
			continue
		}

		records = append(records, models.ComicRecord{
			Title:              title,
			Series:             optional(title),
			IssueNumber:        issue,
			IssueTitle:         optional(field("issue title")),
			VariantDescription: optional(field("variant description")),
			Publisher:          field("publisher"),
			ReleaseDate:        comics.ParseReleaseDate(field("release date")),
			CoverDate:          comics.ParseReleaseDate(field("cover date")),
			PublicationDate:    comics.ParseReleaseDate(field("publication date")),
			Format:             optional(field("format")),
			AddedDate:          comics.ParseReleaseDate(field("added date")),
			CoverPrice:         comics.ParseNumber(field("cover price")),
			CoverCurrency:      optional(field("cover currency")),
			PageCount:          comics.ParseInt(field("page count")),
			Age:                optional(field("age")),
			Language:           optional(field("language")),
			Country:            optional(field("country")),
			KeyReason:          optional(field("key reason")),
			SeriesGroup:        optional(field("series group")),
			CollectionName:     optional(field("collection name")),
			CollectionHash:     optional(field("collection hash")),
			Quantity:           comics.ParseInt(field("quantity")),
			CoverURL:           optional(field("cover url")),
			Synopsis:           optional(field("synopsis")),
			Grade:              optional(field("grade")),
			Barcode:            optional(field("barcode")),
			Notes:              optional(field("notes")),
			IsKey:              field("key reason") != "",
			IsOwned:            true,
			SignatureStatus:    "none",
			SlabStatus:         "raw",
			Metadata:           []byte("{}"),
		})
	}
	return records, nil
}
