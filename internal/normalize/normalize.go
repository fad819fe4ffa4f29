package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/cta/internal/model"
)

var (
	// alsoSuffix matches a space, an optional asterisk and the word "also"
	// with everything after it.
	alsoSuffix = regexp.MustCompile(`(?is) \*? ?also\b.*`)

	// innermostSpan matches a parenthesized or bracketed span that contains
	// no other delimiter, so nested spans are removed from the inside out.
	innermostSpan = regexp.MustCompile(`\([^()\[\]]*\)|\[[^()\[\]]*\]`)

	// separatorRun matches runs of spaces and hyphens.
	separatorRun = regexp.MustCompile(`[ \-]+`)

	// doubleUnderscore matches repeated underscores.
	doubleUnderscore = regexp.MustCompile(`_{2,}`)
)

// Key normalizes a raw cell value. It returns model.AbsentKey when nothing
// usable remains.
func Key(raw string) model.Key {
	s := stripAlso(raw)
	s = stripSpans(s)
	s = keepKeyRunes(s)
	s = separatorRun.ReplaceAllString(s, "_")
	s = doubleUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return model.NewKey(s)
}

// Cell normalizes one cell; missing cells are absent without applying any rule.
func Cell(c model.Cell) model.Key {
	if c.Missing {
		return model.AbsentKey
	}
	return Key(c.Value)
}

// Cells normalizes a column extract, keeping one key per cell.
func Cells(cells []model.Cell) []model.Key {
	keys := make([]model.Key, len(cells))
	for i, c := range cells {
		keys[i] = Cell(c)
	}
	return keys
}

func stripAlso(s string) string {
	return alsoSuffix.ReplaceAllString(s, "")
}

func stripSpans(s string) string {
	for {
		next := innermostSpan.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}

// keepKeyRunes composes the text to NFC and drops every rune that is not a
// letter, digit, space, hyphen or slash. Other whitespace becomes a space.
// Underscores are kept so an existing key normalizes to itself.
func keepKeyRunes(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '/', r == ' ', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}
