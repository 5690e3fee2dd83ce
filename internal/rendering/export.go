package rendering

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/career-analyzer/internal/types"
)

// Format is an export file format
type Format string

// Supported export formats
const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatPDF:
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/json"
}

// Filename returns the download name for an export made at now, dated in UTC.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("career_analysis_%s.%s", now.UTC().Format("2006-01-02"), f)
}

// ContentDisposition returns the attachment header value for an export.
func ContentDisposition(f Format, now time.Time) string {
	return "attachment; filename=" + Filename(f, now)
}

type exportBullet struct {
	ID            string               `json:"id"`
	Text          string               `json:"text"`
	Formatting    types.FormattingInfo `json:"formatting"`
	OriginalIndex int                  `json:"original_index"`
}

type exportBin struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Color   string         `json:"color"`
	Bullets []exportBullet `json:"bullets"`
}

type studentAnalysis struct {
	Timestamp string          `json:"timestamp"`
	Bins      []exportBin     `json:"bins"`
	Analytics types.Analytics `json:"analytics"`
}

// ExportJSON renders the downloadable JSON document:
// {"student_analysis": {"timestamp", "bins", "analytics"}} indented by two spaces.
// Onboarding answers are not part of the export.
func ExportJSON(result *types.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, &RenderError{Format: FormatJSON, Message: "no analysis to export"}
	}

	doc := studentAnalysis{
		Timestamp: result.Timestamp.Format(time.RFC3339Nano),
		Bins:      make([]exportBin, len(result.Bins)),
		Analytics: result.Analytics,
	}
	if doc.Analytics.Suggestions == nil {
		doc.Analytics.Suggestions = []string{}
	}
	for i, bin := range result.Bins {
		eb := exportBin{ID: bin.ID, Label: bin.Label, Color: bin.Color, Bullets: make([]exportBullet, len(bin.Bullets))}
		for j, b := range bin.Bullets {
			eb.Bullets[j] = exportBullet{ID: b.ID, Text: b.Text, Formatting: b.Formatting, OriginalIndex: b.OriginalIndex}
		}
		doc.Bins[i] = eb
	}

	data, err := json.MarshalIndent(map[string]studentAnalysis{"student_analysis": doc}, "", "  ")
	if err != nil {
		return nil, &RenderError{Format: FormatJSON, Message: "failed to encode analysis", Cause: err}
	}
	return data, nil
}
