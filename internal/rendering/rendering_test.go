package rendering

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-analyzer/internal/analytics"
	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/jonathan/career-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)

func sampleResult() *types.AnalysisResult {
	bins := make([]types.Bin, 0, 4)
	for _, cfg := range catalog.Bins() {
		bins = append(bins, types.NewBin(cfg))
	}
	bins[0].Bullets = append(bins[0].Bullets, types.BulletPoint{
		ID: "a", Text: "Led <robotics> club", OriginalIndex: 3,
		Formatting: types.FormattingInfo{
			Bold:   []bool{true, true, true, false, false, false, false, false, false, false, false, false, false, false, false, false, false, false, false},
			Italic: make([]bool, 19),
		},
	})
	bins[3].Bullets = append(bins[3].Bullets,
		types.BulletPoint{ID: "b", Text: "Mentored peers", Formatting: types.PlainFormatting("Mentored peers")},
		types.BulletPoint{ID: "b-dup-1", Text: "Mentored peers", Formatting: types.PlainFormatting("Mentored peers"), IsDuplicate: true},
	)
	return analytics.NewResult(bins, stamp, &types.OnboardingData{Word: "Curious"})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("docx")
	var ue *UnsupportedFormatError
	assert.ErrorAs(t, err, &ue)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "career_analysis_2024-03-07.json", Filename(FormatJSON, stamp))
	assert.Equal(t, "attachment; filename=career_analysis_2024-03-07.pdf", ContentDisposition(FormatPDF, stamp))

	// Late evening west of UTC is already the next day.
	eastern := time.FixedZone("UTC-5", -5*60*60)
	assert.Equal(t, "career_analysis_2026-01-02.json", Filename(FormatJSON, time.Date(2026, 1, 1, 23, 30, 0, 0, eastern)))
}

func TestExportJSON_Shape(t *testing.T) {
	data, err := ExportJSON(sampleResult())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"student_analysis\": {\n    \"timestamp\": \"2024-03-07T15:04:05Z\",")))

	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	sa := doc["student_analysis"]
	assert.Len(t, sa, 3)
	assert.Contains(t, sa, "bins")
	assert.Contains(t, sa, "analytics")
	assert.NotContains(t, string(data), "onboardingData")
	assert.NotContains(t, string(data), "is_duplicate")
	assert.NotContains(t, string(data), "description")

	var bins []map[string]any
	require.NoError(t, json.Unmarshal(sa["bins"], &bins))
	require.Len(t, bins, 4)
	assert.Equal(t, "interests", bins[0]["id"])
	bullet := bins[0]["bullets"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 3, bullet["original_index"])
	assert.Contains(t, bullet, "formatting")
}

func TestExportJSON_Nil(t *testing.T) {
	_, err := ExportJSON(nil)
	var re *RenderError
	assert.ErrorAs(t, err, &re)
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(sampleResult())
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Career Design Analysis - March 07, 2024", doc.Find("h1").Text())

	rows := doc.Find("table tr")
	assert.Equal(t, 5, rows.Length())
	assert.Equal(t, "Interests", rows.Eq(1).Find("td").Eq(0).Text())
	assert.Equal(t, "33.3%", rows.Eq(1).Find("td").Eq(2).Text())
	assert.Equal(t, "0.0%", rows.Eq(2).Find("td").Eq(2).Text())

	sections := doc.Find("section.bin")
	assert.Equal(t, 2, sections.Length(), "empty bins are not listed")
	assert.Contains(t, sections.Eq(1).Find("h3").Text(), "Strengths (2 bullets)")
	style, _ := sections.Eq(0).Find("h3 span").Attr("style")
	assert.Contains(t, style, "#267ABA")

	first := sections.Eq(0).Find("li").First()
	assert.Equal(t, "Led <robotics> club", first.Text())
	assert.Equal(t, "Led", first.Find("b").Text())

	assert.Greater(t, doc.Find("ul.insights li").Length(), 0)
}

func TestBuildReportData_RejectsBadColor(t *testing.T) {
	r := sampleResult()
	r.Bins[0].Color = "red; background: url(x)"
	data := BuildReportData(r)
	assert.Equal(t, defaultColor, string(data.Bins[0].Color))
}

func TestChromePDF(t *testing.T) {
	if os.Getenv("CHROME_TESTS") == "" {
		t.Skip("CHROME_TESTS not set, skipping headless Chrome test")
	}
	r := NewChromePDF(1, 60*time.Second, nil)

	pdf, err := r.Render(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestChromePDF_CanceledWhileWaiting(t *testing.T) {
	r := NewChromePDF(1, time.Second, nil)
	require.NoError(t, r.sem.Acquire(context.Background(), 1))
	defer r.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, sampleResult())
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, FormatPDF, re.Format)
}
