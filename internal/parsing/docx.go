package parsing

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
	"unicode"

	"github.com/jonathan/career-analyzer/internal/types"
)

// paragraph is a body paragraph of a WordprocessingML document with
// per-rune run formatting.
type paragraph struct {
	styleID  string
	numbered bool
	text     []rune
	bold     []bool
	italic   []bool
}

type runState struct {
	active  bool
	inProps bool
	inText  bool
	bold    bool
	italic  bool
}

func (p *paragraph) add(s string, r runState) {
	for _, c := range s {
		p.text = append(p.text, c)
		p.bold = append(p.bold, r.bold)
		p.italic = append(p.italic, r.italic)
	}
}

// UnmarshalXML streams the paragraph so runs nested in hyperlinks keep document order.
func (p *paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var run runState
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "pStyle":
				if !run.active {
					p.styleID = attrValue(t, "val")
				}
			case "numPr":
				p.numbered = true
			case "r":
				run = runState{active: true}
			case "rPr":
				run.inProps = run.active
			case "b":
				if run.inProps {
					run.bold = onOff(t)
				}
			case "i":
				if run.inProps {
					run.italic = onOff(t)
				}
			case "t":
				run.inText = run.active
			case "tab":
				if run.active && !run.inProps {
					p.add("\t", run)
				}
			case "br", "cr":
				if run.active {
					p.add("\n", run)
				}
			}
		case xml.EndElement:
			if depth == 0 {
				return nil
			}
			depth--
			switch t.Name.Local {
			case "r":
				run = runState{}
			case "rPr":
				run.inProps = false
			case "t":
				run.inText = false
			}
		case xml.CharData:
			if run.inText {
				p.add(string(t), run)
			}
		}
	}
}

type document struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type styleSheet struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// onOff reads a WordprocessingML toggle property such as <w:b/> or <w:b w:val="0"/>.
func onOff(el xml.StartElement) bool {
	switch strings.ToLower(attrValue(el, "val")) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// docxBullets extracts bullet paragraphs from a .docx archive. A paragraph is a
// bullet if its text starts with a bullet marker, it is a numbered/bulleted list
// item, or its style name contains "List".
func docxBullets(data []byte) ([]types.BulletPoint, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Message: "unreadable DOCX", Cause: err}
	}

	var doc document
	if err := decodePart(zr, "word/document.xml", &doc); err != nil {
		return nil, err
	}

	styleNames := map[string]string{}
	var styles styleSheet
	if err := decodePart(zr, "word/styles.xml", &styles); err == nil {
		for _, s := range styles.Styles {
			styleNames[s.ID] = s.Name.Val
		}
	}

	bullets := []types.BulletPoint{}
	for idx, p := range doc.Body.Paragraphs {
		raw := string(p.text)
		style := styleNames[p.styleID]
		if style == "" {
			style = p.styleID
		}
		if !HasBulletPrefix(raw) && !p.numbered && !strings.Contains(style, "List") {
			continue
		}

		rest, skip := stripBulletPrefix(raw)
		lead := len([]rune(rest)) - len([]rune(strings.TrimLeftFunc(rest, unicode.IsSpace)))
		clean := strings.TrimSpace(rest)
		bullets = append(bullets, types.BulletPoint{
			ID:            newID(),
			Text:          clean,
			Formatting:    sliceFormatting(p, skip+lead, len([]rune(clean))),
			OriginalIndex: idx,
		})
	}
	return bullets, nil
}

// sliceFormatting takes the run formatting of the cleaned text, padding with false.
func sliceFormatting(p paragraph, offset, n int) types.FormattingInfo {
	f := types.FormattingInfo{Bold: make([]bool, n), Italic: make([]bool, n)}
	for i := 0; i < n; i++ {
		j := offset + i
		if j < len(p.bold) {
			f.Bold[i] = p.bold[j]
			f.Italic[i] = p.italic[j]
		}
	}
	return f
}

// decodePart decodes an XML part of the archive.
func decodePart(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if err != nil {
		return &ParseError{Message: "missing " + name, Cause: err}
	}
	defer func() { _ = f.Close() }()

	if err := xml.NewDecoder(f).Decode(v); err != nil {
		return &ParseError{Message: "malformed " + name, Cause: err}
	}
	return nil
}
