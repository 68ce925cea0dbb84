// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Free-text extraction patterns.
var (
	bibitemRe   = regexp.MustCompile(`\\bibitem\s*(?:\[[^\]]*\])?\s*\{([^}]+)\}`)
	blankLineRe = regexp.MustCompile(`\n\s*\n+`)
	endBibRe    = regexp.MustCompile(`(?s)\\end\{thebibliography\}.*$`)

	// listMarkerRe matches "[1] ", "1. ", "- " entry markers.
	listMarkerRe = regexp.MustCompile(`^\s*(?:\[\d+\]|\d+[.)]|[-*+])\s+`)

	// emphRe unwraps \emph{...} style font commands.
	emphRe = regexp.MustCompile(`\\(?:emph|textit|textbf|it|bf)\s*\{([^}]*)\}`)

	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile("``([^`]+)''"),
		regexp.MustCompile(`"([^"]+)"`),
		regexp.MustCompile(`'([^']+)'`),
		regexp.MustCompile(`:\s*([^.\n]+)\.`),
		regexp.MustCompile(`([A-Za-z][^.\n]{10,})\.`),
	}

	doiRe      = regexp.MustCompile(`(?i)(?:doi:\s*|https?://(?:dx\.)?doi\.org/)(10\.\d{4,9}/[^\s\}\],;]+)`)
	bareDOIRe  = regexp.MustCompile(`(?i)(?:doi:\s*)?10\.\d{4,9}/[^\s\}\],;]+`)
	texURLRe   = regexp.MustCompile(`\\url\{([^}]+)\}`)
	plainURLRe = regexp.MustCompile(`https?://[^\s\}]+`)
	parenYear  = regexp.MustCompile(`\(((?:19|20)\d{2})\)`)
	bareYear   = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	// trailingYearRe and venueTailRe peel "12(3), 10--20 (2019)" off a venue.
	trailingYearRe = regexp.MustCompile(`(?:^|[,\s]+)\(?\s*(?:19|20)\d{2}\s*\)?\s*$`)
	venueTailRe    = regexp.MustCompile(`(?i)[,\s]+(?:vol\.?\s*)?(\d+)\s*(?:\(([\w-]+)\))?(?:\s*[,:]\s*(?:pp\.?\s*)?(\d+\s*(?:--?|–|—)\s*\d+|\d+))?\s*$`)
)

const (
	trimTitle = " \n\t.,;:"
	trimOuter = " \n\t,.;:-\"'`"
)

// journalStops end the venue portion of a reference.
var journalStops = []string{" doi:", " arxiv:", " arxiv preprint", " accessed:"}

// ParseText splits free text into references and extracts fields from
// each. \bibitem blocks are used when present, otherwise blank-line
// separated paragraphs, or lines when the text is a single paragraph.
// References with neither a title nor a DOI are skipped.
func ParseText(text, format string) []types.CitationRecord {
	type chunk struct {
		id, key, text string
	}
	var chunks []chunk

	if locs := bibitemRe.FindAllStringSubmatchIndex(text, -1); len(locs) > 0 {
		for i, loc := range locs {
			end := len(text)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			key := strings.TrimSpace(text[loc[2]:loc[3]])
			id := key
			if id == "" {
				id = fmt.Sprintf("%s:%d", format, i+1)
			}
			body := endBibRe.ReplaceAllString(text[loc[0]:end], "")
			chunks = append(chunks, chunk{id: id, key: key, text: strings.TrimSpace(body)})
		}
	} else {
		var parts []string
		for _, p := range blankLineRe.Split(text, -1) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 1 && strings.Contains(parts[0], "\n") {
			parts = parts[:0]
			for _, line := range strings.Split(text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					parts = append(parts, line)
				}
			}
		}
		for i, p := range parts {
			chunks = append(chunks, chunk{id: fmt.Sprintf("%s:%d", format, i+1), text: p})
		}
	}

	var out []types.CitationRecord
	for _, ch := range chunks {
		if c, ok := parseReference(ch.text, ch.id, format, ch.key); ok {
			out = append(out, c)
		}
	}
	return out
}

// parseReference extracts fields from one reference string.
func parseReference(raw, id, format, key string) (types.CitationRecord, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return types.CitationRecord{}, false
	}
	text = listMarkerRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\newblock`, " ")
	text = emphRe.ReplaceAllString(text, "$1")

	title := extractTitle(text)
	doi := extractDOI(text)
	if title == "" && doi == "" {
		return types.CitationRecord{}, false
	}

	c := types.CitationRecord{ID: id, SourceFormat: format, BibitemKey: key, Raw: raw}
	set := func(name types.FieldName, s string) {
		if s = strings.TrimSpace(s); s != "" {
			c.Set(name, types.TextValue(s))
		}
	}
	set(types.FieldTitle, title)
	set(types.FieldDOI, doi)
	set(types.FieldURL, extractURL(text))
	set(types.FieldYear, extractYear(text))
	if authors := extractAuthors(text, title); len(authors) > 0 {
		c.Authors = types.Some(authors)
	}
	venue := extractVenue(text, title)
	set(types.FieldJournal, venue.journal)
	set(types.FieldVolume, venue.volume)
	set(types.FieldIssue, venue.issue)
	set(types.FieldPages, venue.pages)
	return c, true
}

func extractTitle(text string) string {
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if t := strings.Trim(m[1], trimTitle); t != "" {
				return t
			}
		}
	}
	return ""
}

func extractDOI(text string) string {
	m := doiRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".,;")
}

func extractURL(text string) string {
	if m := texURLRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := plainURLRe.FindString(text); m != "" {
		return strings.TrimRight(m, ".,;")
	}
	return ""
}

// extractYear prefers the last parenthesized year and ignores digits
// inside URLs and DOIs.
func extractYear(text string) string {
	text = texURLRe.ReplaceAllString(text, " ")
	text = plainURLRe.ReplaceAllString(text, " ")
	text = bareDOIRe.ReplaceAllString(text, " ")
	if all := parenYear.FindAllStringSubmatch(text, -1); len(all) > 0 {
		return all[len(all)-1][1]
	}
	if all := bareYear.FindAllStringSubmatch(text, -1); len(all) > 0 {
		return all[len(all)-1][1]
	}
	return ""
}

// extractAuthors reads the names before the title, up to the last colon.
func extractAuthors(text, title string) []string {
	prefix := text
	if title != "" {
		if pos := strings.Index(text, title); pos > 0 {
			prefix = text[:pos]
		}
	}
	if i := strings.LastIndex(prefix, ":"); i >= 0 {
		prefix = prefix[:i]
	}
	prefix = strings.Trim(bibitemRe.ReplaceAllString(prefix, ""), trimOuter)
	if prefix == "" || prefix == text {
		return nil
	}
	return normalize.SplitAuthors(strings.ReplaceAll(prefix, " and ", "; "))
}

type venue struct {
	journal, volume, issue, pages string
}

// extractVenue reads the text after the title up to a DOI or preprint
// marker, and splits trailing volume, issue, and pages off the journal.
func extractVenue(text, title string) venue {
	var v venue
	if title == "" {
		return v
	}
	pos := strings.Index(text, title)
	if pos < 0 {
		return v
	}
	tail := text[pos+len(title):]
	tail = texURLRe.ReplaceAllString(tail, "")
	tail = plainURLRe.ReplaceAllString(tail, "")
	tail = strings.Trim(strings.Join(strings.Fields(tail), " "), trimOuter)
	if tail == "" {
		return v
	}
	lower := strings.ToLower(" " + tail)
	cut := len(tail)
	for _, stop := range journalStops {
		if i := strings.Index(lower, stop); i >= 0 {
			cut = min(cut, max(i-1, 0))
		}
	}
	tail = strings.Trim(tail[:cut], trimOuter)

	tail = strings.Trim(trailingYearRe.ReplaceAllString(tail, ""), trimOuter)
	if m := venueTailRe.FindStringSubmatchIndex(tail); m != nil && m[0] > 0 {
		v.volume = tail[m[2]:m[3]]
		if m[4] >= 0 {
			v.issue = tail[m[4]:m[5]]
		}
		if m[6] >= 0 {
			v.pages = normalize.Pages(tail[m[6]:m[7]])
		}
		tail = tail[:m[0]]
	}
	v.journal = strings.Trim(tail, trimOuter)
	return v
}
