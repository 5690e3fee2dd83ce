package parsing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// spaceGap is the fraction of the font size treated as a word gap between glyph runs.
const spaceGap = 0.15

// pdfText extracts the text of every page, one line per text row.
// The pdf reader panics on some malformed inputs, so panics are converted to errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseError{Message: "unreadable PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Message: "unreadable PDF", Cause: err}
	}

	var sb strings.Builder
	for n := 1; n <= reader.NumPage(); n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return "", &ParseError{Message: fmt.Sprintf("failed to read page %d", n), Cause: err}
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// pageText groups glyphs into rows by position. Row grouping only sees lines
// placed with Tm, so a page that collapses into a single row is re-read as
// plain text, which also breaks lines on T*.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(rowText(row.Content))
		sb.WriteByte('\n')
	}
	if len(rows) > 1 {
		return sb.String(), nil
	}

	plain, err := page.GetPlainText(nil)
	if err != nil || strings.Count(strings.TrimSpace(plain), "\n") == 0 {
		return sb.String(), nil
	}
	if !strings.HasSuffix(plain, "\n") {
		plain += "\n"
	}
	return plain, nil
}

func rowText(content pdf.TextHorizontal) string {
	var sb strings.Builder
	for i, t := range content {
		if i > 0 {
			prev := content[i-1]
			if t.X-(prev.X+prev.W) > prev.FontSize*spaceGap &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
	}
	return sb.String()
}
