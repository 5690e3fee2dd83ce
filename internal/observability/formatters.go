// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/jonathan/career-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the width of a 100% distribution bar
	barWidth = 20
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) []string {
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// formattedRuns counts the bold and italic characters of a bullet.
func formattedRuns(f types.FormattingInfo) (bold, italic int) {
	for _, b := range f.Bold {
		if b {
			bold++
		}
	}
	for _, i := range f.Italic {
		if i {
			italic++
		}
	}
	return bold, italic
}

// PrintBullets outputs extracted bullets in document order.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBullets(bullets []types.BulletPoint) {
	if len(bullets) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO BULLET POINTS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Extracted %d bullets:\n\n", len(bullets)))
	for i, b := range bullets {
		sb.WriteString(fmt.Sprintf("%2d. %s\n", i+1, b.Text))
		if bold, italic := formattedRuns(b.Formatting); bold > 0 || italic > 0 {
			sb.WriteString(fmt.Sprintf("    [bold %d, italic %d chars]\n", bold, italic))
		}
	}

	p.printBox("EXTRACTED BULLETS", strings.TrimSuffix(sb.String(), "\n"))
}

// bar renders a percentage as a horizontal bar.
func bar(percentage float64) string {
	n := int(percentage/100*barWidth + 0.5)
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

// PrintAnalysis outputs the distribution table, the top category and the suggestions.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 30
	tbl.AddRow("CATEGORY", "COUNT", "PERCENT", "")
	for _, d := range result.Analytics.Distribution {
		tbl.AddRow(result.LabelFor(d.BinID), d.Count, fmt.Sprintf("%.1f%%", d.Percentage), bar(d.Percentage))
	}
	fmt.Fprintln(p.out, tbl)
	fmt.Fprintln(p.out)

	top := color.New(color.Bold, color.FgCyan).SprintFunc()
	fmt.Fprintf(p.out, "Top category: %s\n", top(result.LabelFor(result.Analytics.TopCategory)))

	if len(result.Analytics.Suggestions) > 0 {
		fmt.Fprintln(p.out, "\nSuggestions:")
		for _, s := range result.Analytics.Suggestions {
			fmt.Fprintf(p.out, "  • %s\n", s)
		}
	}
}

// PrintNarrative outputs narrative guidance with its experience suggestions.
func (p *Printer) PrintNarrative(resp *types.NarrativeResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	for _, line := range wrap(resp.Paragraph, boxWidth-4) {
		sb.WriteString(line + "\n")
	}
	if len(resp.Bullets) > 0 {
		sb.WriteString("\n")
		for _, b := range resp.Bullets {
			sb.WriteString(fmt.Sprintf("• %s\n", b))
		}
	}

	for _, s := range resp.ExperienceSuggestions {
		sb.WriteString(fmt.Sprintf("\n[%s] %s\n", s.Alignment, truncate(s.Original, boxWidth-12)))
		sb.WriteString(fmt.Sprintf("  %s\n", s.Category))
		if s.Reframe != nil {
			for _, line := range wrap("Reframe: "+*s.Reframe, boxWidth-6) {
				sb.WriteString("  " + line + "\n")
			}
		}
	}

	p.printBox("CAREER NARRATIVE", strings.TrimSuffix(sb.String(), "\n"))
}
