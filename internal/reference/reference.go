// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reference applies correction patches to citation fields and
// re-renders the corrected citation by field substitution.
package reference

import (
	"fmt"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Apply returns a copy of fields with the patch applied. When the result has
// a DOI but no URL, the doi.org link is filled in.
func Apply(fields types.Fields, patch types.CorrectionPatch) types.Fields {
	out := fields
	for _, name := range types.AllFields {
		op, ok := patch[name]
		if !ok {
			continue
		}
		switch op.Op {
		case types.PatchSet:
			if op.Value != nil {
				out.Set(name, *op.Value)
			}
		case types.PatchUnset:
			out.Unset(name)
		}
	}
	if doi, ok := out.Get(types.FieldDOI); ok {
		if _, hasURL := out.Get(types.FieldURL); !hasURL {
			if u := normalize.DOIURL(doi.Text); u != "" {
				out.Set(types.FieldURL, types.TextValue(u))
			}
		}
	}
	return out
}

// Render formats fields in the citation's source format: a \bibitem block
// for LaTeX and BibTeX-derived sources, canonical text otherwise.
func Render(c types.CitationRecord, fields types.Fields) types.CorrectedReference {
	format := c.SourceFormat
	switch format {
	case "tex", "bib":
		return types.CorrectedReference{Format: format, Text: renderTeX(c, fields)}
	default:
		return types.CorrectedReference{Format: format, Text: renderText(fields)}
	}
}

func text(f types.Fields, name types.FieldName) string {
	v, _ := f.Get(name)
	return v.Text
}

func authors(f types.Fields) []string {
	v, ok := f.Get(types.FieldAuthors)
	if !ok {
		return nil
	}
	var out []string
	for _, n := range v.Names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// renderText produces `Authors: "Title." Journal, vol(issue), pages (year). doi:x. url.`
func renderText(f types.Fields) string {
	authorPart := "[missing authors]"
	if a := authors(f); len(a) > 0 {
		authorPart = strings.Join(a, ", ")
	}
	title := strings.TrimRight(text(f, types.FieldTitle), ". ")
	if title == "" {
		title = "[missing title]"
	}
	journal := text(f, types.FieldJournal)
	if journal == "" {
		journal = "[missing journal]"
	}

	venue := []string{journal}
	volume, issue := text(f, types.FieldVolume), text(f, types.FieldIssue)
	switch {
	case volume != "" && issue != "":
		venue = append(venue, fmt.Sprintf("%s(%s)", volume, issue))
	case volume != "":
		venue = append(venue, volume)
	case issue != "":
		venue = append(venue, "("+issue+")")
	}
	if pages := text(f, types.FieldPages); pages != "" {
		venue = append(venue, pages)
	}
	venueText := strings.Join(venue, ", ")
	if year := text(f, types.FieldYear); year != "" {
		venueText += " (" + year + ")"
	}

	// The quoted title carries its own period; only the venue and the
	// segments after it are joined with ". ".
	head := authorPart + `: "` + title + `."`
	segments := []string{venueText}
	if doi := text(f, types.FieldDOI); doi != "" {
		segments = append(segments, "doi:"+normalize.DOI(doi))
	}
	if u := text(f, types.FieldURL); u != "" {
		segments = append(segments, u)
	}
	return head + " " + strings.Join(segments, ". ") + "."
}

// renderTeX produces a \bibitem block with LaTeX quotes and page dashes.
func renderTeX(c types.CitationRecord, f types.Fields) string {
	key := c.BibitemKey
	if key == "" {
		key = strings.ReplaceAll(c.ID, ":", "_")
	}
	lines := []string{`\bibitem{` + key + `}`}

	a := strings.Join(authors(f), ", ")
	title := text(f, types.FieldTitle)
	switch {
	case a != "" && title != "":
		lines = append(lines, a+": ``"+title+".''")
	case title != "":
		lines = append(lines, "``"+title+".''")
	case a != "":
		lines = append(lines, a)
	}

	venue := text(f, types.FieldJournal)
	volume, issue := text(f, types.FieldVolume), text(f, types.FieldIssue)
	switch {
	case volume != "" && issue != "":
		venue = strings.TrimSpace(fmt.Sprintf("%s %s(%s)", venue, volume, issue))
	case volume != "":
		venue = strings.TrimSpace(venue + " " + volume)
	case issue != "":
		venue = strings.TrimSpace(venue + " (" + issue + ")")
	}
	if pages := text(f, types.FieldPages); pages != "" {
		venue = strings.Trim(venue+", "+strings.ReplaceAll(normalize.Pages(pages), "-", "--"), ", ")
	}
	if year := text(f, types.FieldYear); year != "" {
		venue = strings.TrimSpace(venue + " (" + year + ")")
	}
	if venue != "" {
		lines = append(lines, venue+".")
	}

	u := text(f, types.FieldURL)
	if u == "" {
		u = normalize.DOIURL(text(f, types.FieldDOI))
	}
	if u != "" {
		lines = append(lines, `\url{`+u+`}`)
	}
	return strings.Join(lines, "\n")
}
