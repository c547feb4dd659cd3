package clz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noircollect/pkg/models"
)

const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<collectorz>
  <meta><scope>export</scope><action>export</action></meta>
  <data>
    <comicinfo>
      <comiclist>
        <comic>
          <mainsection>
            <title>The Court of Owls</title>
            <series><displayname>Batman</displayname></series>
            <plot>Bruce Wayne confronts a secret society.</plot>
            <pagecount>32</pagecount>
          </mainsection>
          <issuenr>1</issuenr>
          <issueext>b</issueext>
          <edition><displayname>Second Printing</displayname></edition>
          <publisher><displayname>DC Comics</displayname></publisher>
          <releasedate>
            <year><displayname>2011</displayname></year>
            <month>09</month>
            <day>21</day>
            <date>2011/09/21</date>
            <displaydate>Sep 21, 2011</displaydate>
          </releasedate>
          <coverdate>
            <year><displayname>2011</displayname></year>
            <month>11</month>
            <date>2011/11</date>
            <displaydate>Nov 2011</displaydate>
          </coverdate>
          <addeddate><timestamp>1626350400</timestamp></addeddate>
          <barcode>76194130593600111</barcode>
          <format><displayname>Comic</displayname></format>
          <coverfrontdefault>https://example.com/batman-1.jpg</coverfrontdefault>
          <quantity>2</quantity>
          <collectionstatus>In Collection</collectionstatus>
          <grade><rating>9.8</rating></grade>
          <iskeycomic>Yes</iskeycomic>
          <keycomicreason>First appearance of the Court of Owls</keycomicreason>
          <isslabbed>1</isslabbed>
          <collection><displayname>Main</displayname><hash>abc123</hash></collection>
        </comic>
      </comiclist>
    </comicinfo>
  </data>
</collectorz>`

func TestParseFullDocument(t *testing.T) {
	records, err := Parse(sampleDocument)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Batman", rec.Title, "series name wins over story title")
	require.NotNil(t, rec.IssueTitle)
	assert.Equal(t, "The Court of Owls", *rec.IssueTitle)
	assert.Equal(t, "1b", rec.IssueNumber)
	assert.Equal(t, "DC Comics", rec.Publisher)
	assert.True(t, rec.IsKey)
	assert.True(t, rec.IsOwned)
	assert.Equal(t, "cgc", rec.SlabStatus)
	assert.Equal(t, "none", rec.SignatureStatus)

	require.NotNil(t, rec.ReleaseDate)
	assert.Equal(t, "2011-09-21", *rec.ReleaseDate)
	require.NotNil(t, rec.CoverDate)
	assert.Equal(t, "2011-11-01", *rec.CoverDate)
	require.NotNil(t, rec.AddedDate)
	assert.Equal(t, time.Unix(1626350400, 0).UTC().Format("2006-01-02"), *rec.AddedDate)

	require.NotNil(t, rec.Quantity)
	assert.Equal(t, int64(2), *rec.Quantity)
	require.NotNil(t, rec.PageCount)
	assert.Equal(t, int64(32), *rec.PageCount)
	require.NotNil(t, rec.Grade)
	assert.Equal(t, "9.8", *rec.Grade)

	require.NotNil(t, rec.Notes)
	assert.Contains(t, *rec.Notes, "Variant: Second Printing")
	assert.Contains(t, *rec.Notes, "First appearance of the Court of Owls")
	assert.Contains(t, *rec.Notes, "Story: The Court of Owls")

	assert.NotEmpty(t, rec.Metadata, "raw node is preserved as metadata")
}

func TestParseBareDataRoot(t *testing.T) {
	doc := `<data><comicinfo><comiclist>
		<comic>
			<mainsection><series><displayname>Saga</displayname></series></mainsection>
			<issuenr>1</issuenr>
		</comic>
	</comiclist></comicinfo></data>`

	records, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Saga", records[0].Title)
	assert.True(t, records[0].IsOwned, "missing collectionstatus means owned")
}

func TestParseConventions(t *testing.T) {
	doc := `<data><comicinfo><comiclist>
		<comic>
			<mainsection><series><displayname>X</displayname></series></mainsection>
			<issuenr>1</issuenr>
			<iskeycomic>No</iskeycomic>
			<isslabbed>raw</isslabbed>
			<collectionstatus>In Wishlist</collectionstatus>
		</comic>
	</comiclist></comicinfo></data>`

	records, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.False(t, rec.IsKey, `iskeycomic "No" is not key`)
	assert.Equal(t, "raw", rec.SlabStatus)
	assert.False(t, rec.IsOwned, "wishlist status is not owned")
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not xml at all <<<")
	assert.Error(t, err)
}

func TestBuildRoundTrip(t *testing.T) {
	releaseDate := "2011-09-21"
	coverDate := "2011-11-01"
	synopsis := "Bruce Wayne confronts a secret society."
	grade := "9.8"
	quantity := int64(2)

	in := []models.ComicRecord{{
		Title:           "Batman",
		IssueNumber:     "1b",
		Publisher:       "DC Comics",
		IsKey:           true,
		IsOwned:         true,
		Grade:           &grade,
		Synopsis:        &synopsis,
		ReleaseDate:     &releaseDate,
		CoverDate:       &coverDate,
		Quantity:        &quantity,
		SlabStatus:      "cgc",
		SignatureStatus: "none",
	}}

	out, err := Build(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), xmlHeaderPrefix))

	back, err := Parse(string(out))
	require.NoError(t, err)
	require.Len(t, back, 1)

	rec := back[0]
	assert.Equal(t, "Batman", rec.Title)
	assert.Equal(t, "1b", rec.IssueNumber)
	assert.Equal(t, "DC Comics", rec.Publisher)
	assert.True(t, rec.IsKey)
	assert.True(t, rec.IsOwned)
	require.NotNil(t, rec.ReleaseDate)
	assert.Equal(t, "2011-09-21", *rec.ReleaseDate)
	require.NotNil(t, rec.CoverDate)
	assert.Equal(t, "2011-11-01", *rec.CoverDate)
	require.NotNil(t, rec.Quantity)
	assert.Equal(t, int64(2), *rec.Quantity)
}

const xmlHeaderPrefix = `<?xml version="1.0" encoding="UTF-8"?>`

func TestDateGroupOmitsFirstOfMonthDay(t *testing.T) {
	iso := "2011-11-01"
	g := dateGroup(&iso)
	require.NotNil(t, g)
	assert.Equal(t, "2011", g.Year.DisplayName)
	assert.Equal(t, "11", g.Month)
	assert.Empty(t, g.Day)
	assert.Equal(t, "2011/11", g.Date)
	assert.Equal(t, "Nov 2011", g.DisplayDate)

	iso = "2011-09-21"
	g = dateGroup(&iso)
	require.NotNil(t, g)
	assert.Equal(t, "21", g.Day)
	assert.Equal(t, "2011/09/21", g.Date)
	assert.Equal(t, "Sep 21, 2011", g.DisplayDate)

	assert.Nil(t, dateGroup(nil))
}

func TestParseCSVRoundTrip(t *testing.T) {
	releaseDate := "2011-09-21"
	grade := "9.8"
	in := []models.ComicRecord{{
		Title:       "Batman",
		IssueNumber: "1",
		Publisher:   "DC Comics",
		Grade:       &grade,
		ReleaseDate: &releaseDate,
		IsOwned:     true,
	}}

	out, err := BuildCSV(in)
	require.NoError(t, err)

	back, err := ParseCSV(strings.NewReader(string(out)))
	require.NoError(t, err)
	require.Len(t, back, 1)

	rec := back[0]
	assert.Equal(t, "Batman", rec.Title)
	assert.Equal(t, "1", rec.IssueNumber)
	assert.Equal(t, "DC Comics", rec.Publisher)
	require.NotNil(t, rec.Grade)
	assert.Equal(t, "9.8", *rec.Grade)
	require.NotNil(t, rec.ReleaseDate)
	assert.Equal(t, "2011-09-21", *rec.ReleaseDate)
	assert.True(t, rec.IsOwned)
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	csvText := "Series,Issue,Grade\nBatman,1,9.8\n,,\n"
	records, err := ParseCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Batman", records[0].Title)
}

func TestBuildCSVHeadersAndRow(t *testing.T) {
	notes := "signed at NYCC"
	in := []models.ComicRecord{{
		Title:       "Saga",
		IssueNumber: "1",
		Publisher:   "Image",
		Notes:       &notes,
		IsOwned:     true,
	}}

	out, err := BuildCSV(in)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Series,Issue,Issue Title"))
	assert.True(t, strings.HasSuffix(lines[0], "Grade,Barcode,Notes"))
	assert.True(t, strings.HasPrefix(lines[1], "Saga,1,"))
	assert.True(t, strings.HasSuffix(lines[1], ",signed at NYCC"))
}
