// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// FieldName identifies one bibliographic field of a citation.
type FieldName string

const (
	FieldAuthors FieldName = "authors"
	FieldTitle   FieldName = "title"
	FieldJournal FieldName = "journal"
	FieldVolume  FieldName = "volume"
	FieldIssue   FieldName = "issue"
	FieldPages   FieldName = "pages"
	FieldYear    FieldName = "year"
	FieldDOI     FieldName = "doi"
	FieldURL     FieldName = "url"
)

// AllFields lists every assessed field in report order.
var AllFields = []FieldName{
	FieldAuthors, FieldTitle, FieldJournal, FieldVolume, FieldIssue,
	FieldPages, FieldYear, FieldDOI, FieldURL,
}

// ParseFieldName validates a user-supplied field name.
func ParseFieldName(s string) (FieldName, bool) {
	name := FieldName(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range AllFields {
		if f == name {
			return f, true
		}
	}
	return "", false
}

// Fields is the bibliographic field set shared by citations and candidates.
type Fields struct {
	Authors Field[[]string] `json:"authors,omitzero"`
	Title   Field[string]   `json:"title,omitzero"`
	Journal Field[string]   `json:"journal,omitzero"`
	Volume  Field[string]   `json:"volume,omitzero"`
	Issue   Field[string]   `json:"issue,omitzero"`
	Pages   Field[string]   `json:"pages,omitzero"`
	Year    Field[string]   `json:"year,omitzero"`
	DOI     Field[string]   `json:"doi,omitzero"`
	URL     Field[string]   `json:"url,omitzero"`
}

func (f *Fields) text(name FieldName) *Field[string] {
	switch name {
	case FieldTitle:
		return &f.Title
	case FieldJournal:
		return &f.Journal
	case FieldVolume:
		return &f.Volume
	case FieldIssue:
		return &f.Issue
	case FieldPages:
		return &f.Pages
	case FieldYear:
		return &f.Year
	case FieldDOI:
		return &f.DOI
	case FieldURL:
		return &f.URL
	}
	return nil
}

// Get returns the field's value when it is present and non-blank.
func (f Fields) Get(name FieldName) (Value, bool) {
	if name == FieldAuthors {
		if !f.Authors.Filled() {
			return Value{}, false
		}
		return NamesValue(f.Authors.Value), true
	}
	t := f.text(name)
	if t == nil || !t.Filled() {
		return Value{}, false
	}
	return TextValue(strings.TrimSpace(t.Value)), true
}

// Present reports whether the field was supplied at all, even if empty.
func (f Fields) Present(name FieldName) bool {
	_, ok := f.Provided(name)
	return ok
}

// Provided returns the field exactly as supplied, including a present-empty
// value. The second result is false only when the field is absent.
func (f Fields) Provided(name FieldName) (Value, bool) {
	if name == FieldAuthors {
		if !f.Authors.Valid {
			return Value{}, false
		}
		return NamesValue(f.Authors.Value), true
	}
	t := f.text(name)
	if t == nil || !t.Valid {
		return Value{}, false
	}
	return TextValue(t.Value), true
}

// Set stores v under name, making the field present.
func (f *Fields) Set(name FieldName, v Value) {
	if name == FieldAuthors {
		f.Authors = Some(append([]string(nil), v.Names...))
		return
	}
	if t := f.text(name); t != nil {
		*t = Some(v.Text)
	}
}

// Unset makes the field absent.
func (f *Fields) Unset(name FieldName) {
	if name == FieldAuthors {
		f.Authors = Field[[]string]{}
		return
	}
	if t := f.text(name); t != nil {
		*t = Field[string]{}
	}
}

// CitationRecord is one reference under validation, as parsed from the
// input. It is immutable once parsed.
type CitationRecord struct {
	// ID is caller-supplied or positionally derived (e.g. "json:3"); unique within a run.
	ID string `json:"citation_id"`

	// SourceFormat is the input format: json, csv, txt, md, tex, or bib.
	SourceFormat string `json:"source_format"`

	// BibitemKey is the \bibitem key for LaTeX sources.
	BibitemKey string `json:"bibitem_key,omitempty"`

	// Raw is the unparsed record text, kept for diagnosis.
	Raw string `json:"raw_record,omitempty"`

	Fields
}

// QueryType names the retrieval strategy that produced a candidate.
type QueryType string

const (
	QueryDOI           QueryType = "doi"
	QueryBibliographic QueryType = "bibliographic"
	QueryTitle         QueryType = "title"
	QueryAuthorTitle   QueryType = "author_title"
)

// ShortlistQueries lists the search strategies run for a shortlist, in
// priority order.
var ShortlistQueries = []QueryType{QueryBibliographic, QueryTitle, QueryAuthorTitle}

// Priority orders query types for duplicate resolution; lower wins.
// A direct DOI hit outranks every search strategy.
func (q QueryType) Priority() int {
	switch q {
	case QueryDOI:
		return 0
	case QueryBibliographic:
		return 1
	case QueryTitle:
		return 2
	case QueryAuthorTitle:
		return 3
	default:
		return 4
	}
}

// CandidateRecord is one metadata record returned by a lookup for a
// citation. It lives only for one resolution attempt.
type CandidateRecord struct {
	Fields

	// ExternalID is the backend's stable identifier: the DOI when present,
	// otherwise the backend's own ID (e.g. an OpenAlex work URL).
	ExternalID string `json:"external_id,omitempty"`

	// Source names the backend(s) that returned the record, comma-joined
	// after merging (e.g. "crossref", "crossref,catalog").
	Source string `json:"source,omitempty"`

	// SourceQueryTypes records every strategy that retrieved this work.
	SourceQueryTypes []QueryType `json:"source_query_types"`
}

// BestQuery returns the highest-priority query type in the provenance.
func (c CandidateRecord) BestQuery() QueryType {
	best := QueryType("")
	for _, q := range c.SourceQueryTypes {
		if best == "" || q.Priority() < best.Priority() {
			best = q
		}
	}
	return best
}
