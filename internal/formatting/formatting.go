// Package formatting converts between per-character bold/italic arrays and
// inline HTML markup.
package formatting

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-analyzer/internal/types"
)

type style struct {
	bold, italic bool
}

func at(f []bool, i int) bool {
	return i < len(f) && f[i]
}

// ToHTML renders text with <b> and <i> spans for the formatted runes. Runs of
// identically styled runes share one span, and spans are always properly
// nested (<b> outside <i>). Formatting arrays shorter than the text count as
// unformatted for the missing positions.
func ToHTML(text string, f types.FormattingInfo) string {
	if text == "" {
		return ""
	}

	var sb strings.Builder
	runes := []rune(text)
	start := 0
	for start < len(runes) {
		cur := style{at(f.Bold, start), at(f.Italic, start)}
		end := start + 1
		for end < len(runes) && (style{at(f.Bold, end), at(f.Italic, end)}) == cur {
			end++
		}
		writeSpan(&sb, html.EscapeString(string(runes[start:end])), cur)
		start = end
	}
	return sb.String()
}

func writeSpan(sb *strings.Builder, escaped string, s style) {
	if s.bold {
		sb.WriteString("<b>")
	}
	if s.italic {
		sb.WriteString("<i>")
	}
	sb.WriteString(escaped)
	if s.italic {
		sb.WriteString("</i>")
	}
	if s.bold {
		sb.WriteString("</b>")
	}
}

// blockElements separate their content from neighbouring text with a space.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "ul": true, "ol": true,
}

// FromHTML recovers plain text and per-rune formatting from rich-text markup
// such as a contenteditable field. <b>/<strong> mark bold and <i>/<em> mark
// italic; other tags contribute their text only. Whitespace runs collapse to
// a single space and the result is trimmed.
func FromHTML(markup string) (string, types.FormattingInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", types.FormattingInfo{}, err
	}

	var b builder
	b.walk(doc.Find("body"), style{})
	return b.finish()
}

type builder struct {
	text   []rune
	bold   []bool
	italic []bool
	space  bool
}

func (b *builder) walk(sel *goquery.Selection, s style) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		switch name {
		case "#text":
			b.write(node.Text(), s)
			return
		case "script", "style", "#comment":
			return
		}

		child := s
		switch name {
		case "b", "strong":
			child.bold = true
		case "i", "em":
			child.italic = true
		}
		if blockElements[name] {
			b.space = true
		}
		b.walk(node, child)
		if blockElements[name] {
			b.space = true
		}
	})
}

func (b *builder) write(s string, st style) {
	for _, r := range s {
		if isSpace(r) {
			b.space = true
			continue
		}
		if b.space && len(b.text) > 0 {
			// A collapsed space keeps a style only when both neighbours share it.
			last := len(b.text) - 1
			b.append(' ', style{b.bold[last] && st.bold, b.italic[last] && st.italic})
		}
		b.space = false
		b.append(r, st)
	}
}

func (b *builder) append(r rune, st style) {
	b.text = append(b.text, r)
	b.bold = append(b.bold, st.bold)
	b.italic = append(b.italic, st.italic)
}

func (b *builder) finish() (string, types.FormattingInfo, error) {
	f := types.FormattingInfo{Bold: b.bold, Italic: b.italic}
	if f.Bold == nil {
		f = types.PlainFormatting("")
	}
	return string(b.text), f, nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\u00a0':
		return true
	}
	return false
}
