package rendering

import (
	"embed"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/jonathan/career-analyzer/internal/formatting"
	"github.com/jonathan/career-analyzer/internal/types"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

const defaultColor = "#1F2937"

var (
	hexColorRE = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

	reportOnce sync.Once
	reportTmpl *template.Template
	reportErr  error
)

// ReportData is the view model of the report template
type ReportData struct {
	Title       string
	Rows        []ReportRow
	Bins        []ReportBin
	Suggestions []string
}

// ReportRow is one line of the distribution table
type ReportRow struct {
	Label      string
	Count      int
	Percentage float64
}

// ReportBin is a non-empty bin with its bullets rendered as inline HTML
type ReportBin struct {
	ID      string
	Label   string
	Color   template.CSS
	Bullets []template.HTML
}

// Title returns the report heading for result.
func Title(result *types.AnalysisResult) string {
	return "Career Design Analysis - " + result.Timestamp.Format("January 02, 2006")
}

// BuildReportData assembles the template view model. Empty bins are omitted
// from the bullet listing but still appear in the distribution table.
func BuildReportData(result *types.AnalysisResult) ReportData {
	data := ReportData{
		Title:       Title(result),
		Rows:        make([]ReportRow, 0, len(result.Analytics.Distribution)),
		Suggestions: result.Analytics.Suggestions,
	}
	for _, d := range result.Analytics.Distribution {
		data.Rows = append(data.Rows, ReportRow{Label: result.LabelFor(d.BinID), Count: d.Count, Percentage: d.Percentage})
	}
	for _, bin := range result.Bins {
		if len(bin.Bullets) == 0 {
			continue
		}
		color := bin.Color
		if !hexColorRE.MatchString(color) {
			color = defaultColor
		}
		rb := ReportBin{ID: bin.ID, Label: bin.Label, Color: template.CSS(color)}
		for _, b := range bin.Bullets {
			// ToHTML escapes the text itself and only emits <b>/<i>.
			rb.Bullets = append(rb.Bullets, template.HTML(formatting.ToHTML(b.Text, b.Formatting))) //nolint:gosec
		}
		data.Bins = append(data.Bins, rb)
	}
	return data
}

func reportTemplate() (*template.Template, error) {
	reportOnce.Do(func() {
		reportTmpl, reportErr = template.ParseFS(templateFS, "templates/report.html.tmpl")
		if reportErr != nil {
			reportErr = &TemplateError{Message: "failed to parse report template", Cause: reportErr}
		}
	})
	return reportTmpl, reportErr
}

// RenderHTML renders the printable analysis report.
func RenderHTML(result *types.AnalysisResult) (string, error) {
	if result == nil {
		return "", &RenderError{Format: FormatPDF, Message: "no analysis to export"}
	}
	tmpl, err := reportTemplate()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, BuildReportData(result)); err != nil {
		return "", &TemplateError{Message: "failed to execute report template", Cause: err}
	}
	return sb.String(), nil
}
