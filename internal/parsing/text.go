package parsing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/career-analyzer/internal/types"
)

// Bullet markers recognized at the start of a line. U+F0B7 is the Wingdings
// bullet that Word exports into PDFs.
var (
	bulletPrefixRE = regexp.MustCompile(`^[\s\p{Zs}]*(?:•|●|▪|○|-|–|\*|\d+\.|\x{F0B7})[\s\p{Zs}]+`)
	bulletOnlyRE   = regexp.MustCompile(`^[\s\p{Zs}]*(?:•|●|▪|○|\x{F0B7})[\s\p{Zs}]*$`)
)

const (
	headerUpperRatio  = 0.8
	headerMaxUpperLen = 50
	headerMaxColonLen = 60
)

// newID returns a fresh bullet id.
var newID = func() string { return uuid.NewString() }

// HasBulletPrefix reports whether line starts with a bullet marker followed by text.
func HasBulletPrefix(line string) bool {
	return bulletPrefixRE.MatchString(line)
}

// stripBulletPrefix removes a leading bullet marker and returns the remainder
// along with the number of runes removed.
func stripBulletPrefix(line string) (string, int) {
	loc := bulletPrefixRE.FindStringIndex(line)
	if loc == nil {
		return line, 0
	}
	return line[loc[1]:], utf8.RuneCountInString(line[:loc[1]])
}

// LooksLikeHeader reports whether a line reads like a section heading: mostly
// uppercase and short, or a short label ending in a colon.
func LooksLikeHeader(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}
	n := utf8.RuneCountInString(s)

	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 0 && float64(upper)/float64(letters) > headerUpperRatio && n <= headerMaxUpperLen {
		return true
	}
	return strings.HasSuffix(s, ":") && n <= headerMaxColonLen
}

// ExtractBullets finds bullet points in plain text. A bullet starts at a line
// with a marker (or a marker on its own line) and absorbs following lines until
// a blank line, another bullet, or a header. Text extraction carries no
// formatting, so every bullet gets all-false arrays.
func ExtractBullets(text string) []types.BulletPoint {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	bullets := []types.BulletPoint{}

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		start := i
		var parts []string
		switch {
		case bulletPrefixRE.MatchString(line):
			first, _ := stripBulletPrefix(line)
			if first = strings.TrimSpace(first); first != "" {
				parts = append(parts, first)
			}
			i++
		case bulletOnlyRE.MatchString(line):
			i++
		default:
			i++
			continue
		}

		for i < len(lines) {
			next := strings.TrimSpace(lines[i])
			if next == "" {
				i++
				break
			}
			if bulletPrefixRE.MatchString(next) || bulletOnlyRE.MatchString(next) || LooksLikeHeader(next) {
				break
			}
			parts = append(parts, next)
			i++
		}

		clean := strings.TrimSpace(strings.Join(parts, " "))
		if clean == "" {
			continue
		}
		bullets = append(bullets, types.BulletPoint{
			ID:            newID(),
			Text:          clean,
			Formatting:    types.PlainFormatting(clean),
			OriginalIndex: start,
		})
	}
	return bullets
}
