package clz

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

const datasetVersion = 12

// Build encodes the collection as a CLZ XML export document, the
// structural inverse of Parse.
func Build(records []models.ComicRecord) ([]byte, error) {
	exp := Export{
		Meta: Meta{Scope: "export", Action: "export"},
	}
	nodes := make([]Comic, 0, len(records))
	for i := range records {
		nodes = append(nodes, encodeComic(&records[i]))
	}
	exp.Data.ComicInfo.ComicList.Comics = nodes

	body, err := xml.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("build clz xml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func encodeComic(rec *models.ComicRecord) Comic {
	issuenr, issueext := comics.SplitIssueNumber(rec.IssueNumber)

	quantity := int64(1)
	if rec.Quantity != nil {
		quantity = *rec.Quantity
	}

	status := "In Wishlist"
	if rec.IsOwned {
		status = "In Collection"
	}

	isKey := "No"
	if rec.IsKey {
		isKey = "Yes"
	}

	node := Comic{
		DatasetVersion: datasetVersion,
		MainSection: MainSection{
			Title:     deref(rec.IssueTitle),
			Series:    NamedValue{DisplayName: rec.DisplayTitle()},
			Plot:      deref(rec.Synopsis),
			PageCount: formatInt(rec.PageCount),
		},
		IssueNr:          issuenr,
		IssueExt:         issueext,
		Edition:          NamedValue{DisplayName: deref(rec.VariantDescription)},
		SeriesGroup:      NamedValue{DisplayName: deref(rec.SeriesGroup)},
		Publisher:        NamedValue{DisplayName: rec.Publisher},
		CoverDate:        dateGroup(rec.CoverDate),
		ReleaseDate:      dateGroup(rec.ReleaseDate),
		PublicationDate:  dateGroup(rec.PublicationDate),
		Barcode:          deref(rec.Barcode),
		Format:           NamedValue{DisplayName: deref(rec.Format)},
		CoverFront:       deref(rec.CoverURL),
		Quantity:         strconv.FormatInt(quantity, 10),
		CollectionStatus: status,
		Age:              NamedValue{DisplayName: deref(rec.Age)},
		CoverPrice:       formatFloat(rec.CoverPrice),
		Grade:            Grade{Rating: deref(rec.Grade)},
		IsKeyComic:       isKey,
		KeyComicReason:   deref(rec.KeyReason),
		Country:          NamedValue{DisplayName: deref(rec.Country)},
		Language:         NamedValue{DisplayName: deref(rec.Language)},
		Collection: Collection{
			DisplayName: deref(rec.CollectionName),
			Hash:        deref(rec.CollectionHash),
		},
	}

	if t, ok := parseISO(rec.AddedDate); ok {
		node.AddedDate = &AddedDate{Timestamp: t.Unix()}
	}

	return node
}

// dateGroup synthesizes the CLZ date shape from a canonical ISO date. When
// the day is 1 the day element and the day portion of the display string
// are omitted.
func dateGroup(iso *string) *DateGroup {
	t, ok := parseISO(iso)
	if !ok {
		return nil
	}

	g := &DateGroup{
		Year:  Year{DisplayName: strconv.Itoa(t.Year())},
		Month: fmt.Sprintf("%02d", int(t.Month())),
	}
	if t.Day() == 1 {
		g.Date = t.Format("2006/01")
		g.DisplayDate = t.Format("Jan 2006")
	} else {
		g.Day = fmt.Sprintf("%02d", t.Day())
		g.Date = t.Format("2006/01/02")
		g.DisplayDate = t.Format("Jan 02, 2006")
	}
	return g
}

// DisplayDate renders a canonical ISO date the way CLZ displays dates,
// omitting the day portion when the day is 1. Unparseable input yields "".
func DisplayDate(iso *string) string {
	t, ok := parseISO(iso)
	if !ok {
		return ""
	}
	if t.Day() == 1 {
		return t.Format("Jan 2006")
	}
	return t.Format("Jan 02, 2006")
}

// csvHeaders is the fixed CLZ CSV column set, in export order.
var csvHeaders = []string{
	"Series", "Issue", "Issue Title", "Variant Description", "Publisher",
	"Release Date", "Cover Date", "Publication Date", "Format", "Added Date",
	"Cover Price", "Cover Currency", "Page Count", "Age", "Language", "Country",
	"Key Reason", "Series Group", "Collection Name", "Collection Hash",
	"Quantity", "Cover URL", "Synopsis", "Grade", "Barcode", "Notes",
}

// BuildCSV encodes the collection as a CLZ-compatible CSV export.
func BuildCSV(records []models.ComicRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range records {
		rec := &records[i]
		row := []string{
			rec.DisplayTitle(),
			rec.IssueNumber,
			deref(rec.IssueTitle),
			deref(rec.VariantDescription),
			rec.Publisher,
			DisplayDate(rec.ReleaseDate),
			DisplayDate(rec.CoverDate),
			DisplayDate(rec.PublicationDate),
			deref(rec.Format),
			DisplayDate(rec.AddedDate),
			formatFloat(rec.CoverPrice),
			deref(rec.CoverCurrency),
			formatInt(rec.PageCount),
			deref(rec.Age),
			deref(rec.Language),
			deref(rec.Country),
			deref(rec.KeyReason),
			deref(rec.SeriesGroup),
			deref(rec.CollectionName),
			deref(rec.CollectionHash),
			formatInt(rec.Quantity),
			deref(rec.CoverURL),
			deref(rec.Synopsis),
			deref(rec.Grade),
			deref(rec.Barcode),
			deref(rec.Notes),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func parseISO(iso *string) (time.Time, bool) {
	if iso == nil || *iso == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", *iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
