// Package clz implements the bidirectional mapping between the canonical
// comic record and the CLZ collection-manager XML/CSV schema.
package clz

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

// Export is a full CLZ XML document rooted at <collectorz>.
type Export struct {
	XMLName xml.Name `xml:"collectorz" json:"-"`
	Meta    Meta     `xml:"meta" json:"meta"`
	Data    Data     `xml:"data" json:"data"`
}

type Meta struct {
	Scope  string `xml:"scope" json:"scope"`
	Action string `xml:"action" json:"action"`
}

type Data struct {
	ComicInfo ComicInfo `xml:"comicinfo" json:"comicinfo"`
}

type ComicInfo struct {
	ComicList ComicList `xml:"comiclist" json:"comiclist"`
}

type ComicList struct {
	Comics []Comic `xml:"comic" json:"comic"`
}

// Comic is one <comic> node. Field names and nesting mirror the CLZ
// desktop application's export format exactly.
type Comic struct {
	DatasetVersion int         `xml:"datasetversion,omitempty" json:"datasetversion,omitempty"`
	MainSection    MainSection `xml:"mainsection" json:"mainsection"`
	IssueNr        string      `xml:"issuenr" json:"issuenr"`
	IssueExt       string      `xml:"issueext,omitempty" json:"issueext,omitempty"`
	Edition        NamedValue  `xml:"edition" json:"edition"`
	SeriesGroup    NamedValue  `xml:"seriesgroup" json:"seriesgroup"`
	Publisher      NamedValue  `xml:"publisher" json:"publisher"`
	CoverDate      *DateGroup  `xml:"coverdate,omitempty" json:"coverdate,omitempty"`
	ReleaseDate    *DateGroup  `xml:"releasedate,omitempty" json:"releasedate,omitempty"`
	PublicationDate *DateGroup `xml:"publicationdate,omitempty" json:"publicationdate,omitempty"`
	AddedDate      *AddedDate  `xml:"addeddate,omitempty" json:"addeddate,omitempty"`
	Barcode        string      `xml:"barcode,omitempty" json:"barcode,omitempty"`
	Format         NamedValue  `xml:"format" json:"format"`
	CoverFront     string      `xml:"coverfrontdefault,omitempty" json:"coverfrontdefault,omitempty"`
	Quantity       string      `xml:"quantity,omitempty" json:"quantity,omitempty"`
	CollectionStatus string    `xml:"collectionstatus,omitempty" json:"collectionstatus,omitempty"`
	Age            NamedValue  `xml:"age" json:"age"`
	CoverPrice     string      `xml:"coverprice,omitempty" json:"coverprice,omitempty"`
	Grade          Grade       `xml:"grade" json:"grade"`
	IsKeyComic     string      `xml:"iskeycomic,omitempty" json:"iskeycomic,omitempty"`
	KeyComicReason string      `xml:"keycomicreason,omitempty" json:"keycomicreason,omitempty"`
	Country        NamedValue  `xml:"country" json:"country"`
	Language       NamedValue  `xml:"language" json:"language"`
	Collection     Collection  `xml:"collection" json:"collection"`

	// Written by the CLZ desktop app; read on import, never exported.
	IsSlabbed string `xml:"isslabbed,omitempty" json:"isslabbed,omitempty"`
}

type MainSection struct {
	Title     string `xml:"title,omitempty" json:"title,omitempty"`
	Series    NamedValue `xml:"series" json:"series"`
	Plot      string `xml:"plot,omitempty" json:"plot,omitempty"`
	PageCount string `xml:"pagecount,omitempty" json:"pagecount,omitempty"`
}

type NamedValue struct {
	DisplayName string `xml:"displayname,omitempty" json:"displayname,omitempty"`
}

type Grade struct {
	Rating string `xml:"rating,omitempty" json:"rating,omitempty"`
}

type Collection struct {
	DisplayName string `xml:"displayname,omitempty" json:"displayname,omitempty"`
	Hash        string `xml:"hash,omitempty" json:"hash,omitempty"`
}

// DateGroup is CLZ's nested date shape: year/month/optional-day, a
// slash-joined date string, and a human display string that omits the day
// portion when the day is 1.
type DateGroup struct {
	Year        Year   `xml:"year" json:"year"`
	Month       string `xml:"month,omitempty" json:"month,omitempty"`
	Day         string `xml:"day,omitempty" json:"day,omitempty"`
	Date        string `xml:"date,omitempty" json:"date,omitempty"`
	DisplayDate string `xml:"displaydate,omitempty" json:"displaydate,omitempty"`
}

type Year struct {
	DisplayName string `xml:"displayname,omitempty" json:"displayname,omitempty"`
}

type AddedDate struct {
	Timestamp int64 `xml:"timestamp" json:"timestamp"`
}

// Parse decodes a CLZ XML document into canonical records. It accepts both
// the full <collectorz> root and a bare <data> root, and a single <comic>
// node as well as a list.
func Parse(xmlText string) ([]models.ComicRecord, error) {
	data := []byte(xmlText)

	var exp Export
	err := xml.Unmarshal(data, &exp)
	nodes := exp.Data.ComicInfo.ComicList.Comics

	if err != nil || len(nodes) == 0 {
		var doc struct {
			XMLName xml.Name `xml:"data"`
			Data
		}
		if err2 := xml.Unmarshal(data, &doc); err2 == nil {
			nodes = doc.ComicInfo.ComicList.Comics
		} else if err != nil {
			return nil, fmt.Errorf("parse clz xml: %w", err)
		}
	}

	records := make([]models.ComicRecord, 0, len(nodes))
	for _, node := range nodes {
		records = append(records, decodeComic(node))
	}
	return records, nil
}

// decodeComic maps one CLZ node into the canonical shape, applying the
// source-specific conventions: series name over story title, iskeycomic is
// key unless exactly "no", isslabbed is raw unless neither "raw" nor "0",
// ownership defaults to owned.
func decodeComic(node Comic) models.ComicRecord {
	storyTitle := strings.TrimSpace(node.MainSection.Title)
	series := strings.TrimSpace(node.MainSection.Series.DisplayName)

	// Prefer series name for title to avoid story/splash-page titles.
	title := series
	if title == "" {
		title = storyTitle
	}

	issueNumber := strings.TrimSpace(node.IssueNr + node.IssueExt)

	releaseDate := firstNonEmpty(displayDate(node.ReleaseDate), displayDate(node.CoverDate))
	coverDate := firstNonEmpty(displayDate(node.CoverDate), displayDate(node.PublicationDate))
	publicationDate := firstNonEmpty(displayDate(node.PublicationDate), displayDate(node.CoverDate))

	var addedDate *string
	var addedAt time.Time
	if node.AddedDate != nil && node.AddedDate.Timestamp > 0 {
		addedAt = time.Unix(node.AddedDate.Timestamp, 0).UTC()
		addedDate = comics.ParseReleaseDate(addedAt)
	}

	isKeyText := strings.TrimSpace(node.IsKeyComic)
	isKey := isKeyText != "" && !strings.EqualFold(isKeyText, "no")

	slabText := strings.TrimSpace(node.IsSlabbed)
	slabStatus := "raw"
	if slabText != "" && !strings.EqualFold(slabText, "raw") && slabText != "0" {
		slabStatus = "cgc"
	}

	statusText := strings.ToLower(strings.TrimSpace(node.CollectionStatus))
	isOwned := statusText == "" || strings.Contains(statusText, "collection")

	variant := strings.TrimSpace(node.Edition.DisplayName)
	format := strings.TrimSpace(node.Format.DisplayName)
	keyReason := strings.TrimSpace(node.KeyComicReason)

	var notesParts []string
	if variant != "" {
		notesParts = append(notesParts, "Variant: "+variant)
	}
	if format != "" {
		notesParts = append(notesParts, "Format: "+format)
	}
	if !addedAt.IsZero() {
		notesParts = append(notesParts, "Added: "+addedAt.Format("1/2/2006"))
	}
	if keyReason != "" {
		notesParts = append(notesParts, keyReason)
	}
	if storyTitle != "" && storyTitle != series {
		notesParts = append(notesParts, "Story: "+storyTitle)
	}

	metadata, _ := json.Marshal(node)

	return models.ComicRecord{
		Title:              title,
		Series:             optional(series),
		IssueTitle:         optional(storyTitle),
		IssueNumber:        comics.NormalizeIssueNumber(issueNumber),
		Publisher:          strings.TrimSpace(node.Publisher.DisplayName),
		ReleaseDate:        releaseDate,
		CoverDate:          coverDate,
		PublicationDate:    publicationDate,
		AddedDate:          addedDate,
		CoverURL:           optional(node.CoverFront),
		Barcode:            optional(node.Barcode),
		VariantDescription: optional(variant),
		Format:             optional(format),
		CoverPrice:         comics.ParseNumber(node.CoverPrice),
		PageCount:          comics.ParseInt(node.MainSection.PageCount),
		Age:                optional(node.Age.DisplayName),
		Language:           optional(node.Language.DisplayName),
		Country:            optional(node.Country.DisplayName),
		KeyReason:          optional(keyReason),
		SeriesGroup:        optional(node.SeriesGroup.DisplayName),
		CollectionName:     optional(node.Collection.DisplayName),
		CollectionHash:     optional(node.Collection.Hash),
		Quantity:           comics.ParseInt(node.Quantity),
		IsKey:              isKey,
		Grade:              optional(node.Grade.Rating),
		SlabStatus:         slabStatus,
		SignatureStatus:    "none",
		Notes:              optional(strings.Join(notesParts, " | ")),
		Synopsis:           optional(node.MainSection.Plot),
		IsOwned:            isOwned,
		Metadata:           metadata,
	}
}

// displayDate runs a date group's display string through the canonical
// date parser, yielding ISO or "".
func displayDate(d *DateGroup) string {
	if d == nil {
		return ""
	}
	if iso := comics.ParseReleaseDate(d.DisplayDate); iso != nil {
		return *iso
	}
	return ""
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
