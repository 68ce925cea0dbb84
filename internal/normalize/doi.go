// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes single bibliographic field values into
// comparable forms. Every function is total: input that cannot be parsed
// degrades to an empty form rather than an error.
package normalize

import (
	"regexp"
	"strings"
)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// doiPrefix matches resolver and scheme prefixes in front of a DOI.
var doiPrefix = regexp.MustCompile(`(?i)^(?:https?://)?(?:dx\.)?doi\.org/|^doi:\s*`)

// DOIResolver is the base URL for DOI links.
const DOIResolver = "https://doi.org/"

// DOI returns the lower-cased bare DOI with resolver prefixes and trailing
// punctuation removed.
func DOI(s string) string {
	doi := strings.TrimSpace(s)
	for {
		stripped := doiPrefix.ReplaceAllString(doi, "")
		if stripped == doi {
			break
		}
		doi = strings.TrimSpace(stripped)
	}
	doi = strings.TrimRight(doi, ".,;")
	return strings.ToLower(strings.TrimSpace(doi))
}

// IsDOI reports whether s normalizes to a syntactically valid DOI.
func IsDOI(s string) bool {
	return doiPattern.MatchString(DOI(s))
}

// DOIURL returns the doi.org link for s, or "" when s holds no DOI.
func DOIURL(s string) string {
	doi := DOI(s)
	if doi == "" {
		return ""
	}
	return DOIResolver + doi
}

// SameDOI reports whether two DOI strings name the same work.
func SameDOI(a, b string) bool {
	na, nb := DOI(a), DOI(b)
	return na != "" && na == nb
}
