// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics ("Gödel" -> "godel").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// quoteArtifacts are LaTeX and typographic quote marks left around titles.
var quoteArtifacts = strings.NewReplacer("``", " ", "''", " ", "`", " ", "\"", " ", "“", " ", "”", " ")

// Title returns a folded, punctuation-stripped, whitespace-collapsed title.
// Apostrophes are dropped so "Newton's" becomes "newtons"; other punctuation
// separates words.
func Title(s string) string {
	s = quoteArtifacts.Replace(Fold(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Compact keeps only letters and digits of the folded string. It is the
// form used for strict equality checks.
func Compact(s string) string {
	var b strings.Builder
	for _, r := range Fold(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens splits the normalized title form into words.
func Tokens(s string) []string {
	return strings.Fields(Title(s))
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true,
	"in": true, "on": true, "for": true, "to": true, "at": true, "und": true,
}

// SignificantTokens returns the normalized tokens with stopwords removed.
func SignificantTokens(s string) []string {
	var out []string
	for _, tok := range Tokens(s) {
		if !stopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	// trailingVolume matches ", 20(7), 2905-2920" style tails.
	trailingVolume = regexp.MustCompile(`(?:[,;:]\s*|\s+)(?:vol\.?\s*)?\d[\d\s().,:;\-\x{2013}\x{2014}]*$`)
)

// Journal returns the comparable form of a venue name: folded, without
// surrounding quotes, parenthetical fragments, trailing volume or page
// fragments, or punctuation.
func Journal(s string) string {
	s = Fold(strings.TrimSpace(s))
	s = strings.Trim(s, "\"'`“” ")
	s = trailingVolume.ReplaceAllString(s, "")
	s = parenthetical.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&", " and ")
	return Title(s)
}

var dashes = strings.NewReplacer("--", "-", "–", "-", "—", "-")

// Pages unifies range dashes and removes whitespace: "12 -- 19" -> "12-19".
func Pages(s string) string {
	s = dashes.Replace(s)
	return strings.Join(strings.Fields(s), "")
}

// URL trims and lower-cases a link.
func URL(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims and lower-cases a plain scalar such as a volume or issue.
func Text(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
