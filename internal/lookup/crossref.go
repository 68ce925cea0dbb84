// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// crossrefWorksBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefWorksBase = "https://api.crossref.org/works"

// Crossref queries the Crossref REST API.
type Crossref struct {
	*client

	// Email is sent as the mailto parameter for polite pool access.
	Email string

	// Rows is the number of items requested per search.
	Rows int
}

// NewCrossref returns a Crossref backend configured from cfg.
func NewCrossref(cfg types.LookupConfig) *Crossref {
	rows := cfg.Rows
	if rows <= 0 {
		rows = 5
	}
	return &Crossref{client: newClient(cfg), Email: cfg.Email, Rows: rows}
}

// Name returns the backend identifier.
func (c *Crossref) Name() string { return "crossref" }

// LookupDOI fetches the work registered under doi.
func (c *Crossref) LookupDOI(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	doi = normalize.DOI(doi)
	if doi == "" {
		return nil, ErrNotFound
	}
	reqURL := crossrefWorksBase + "/" + url.PathEscape(doi)
	if c.Email != "" {
		reqURL += "?" + url.Values{"mailto": {c.Email}}.Encode()
	}

	var resp struct {
		Message crossrefWork `json:"message"`
	}
	if err := c.getJSON(ctx, "Crossref", reqURL, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("looking up DOI %s: %w", doi, err)
	}
	rec := resp.Message.toCandidate()
	rec.Source = c.Name()
	rec.SourceQueryTypes = []types.QueryType{types.QueryDOI}
	return &rec, nil
}

// Search runs one query strategy. A citation lacking the strategy's terms
// yields no records and no error.
func (c *Crossref) Search(ctx context.Context, qt types.QueryType, q Query) ([]types.CandidateRecord, error) {
	params := url.Values{"rows": {strconv.Itoa(c.Rows)}}
	switch qt {
	case types.QueryBibliographic:
		terms := q.Terms(qt)
		if terms == "" {
			return nil, nil
		}
		params.Set("query.bibliographic", terms)
	case types.QueryTitle:
		if q.Terms(qt) == "" {
			return nil, nil
		}
		params.Set("query.title", q.Title)
	case types.QueryAuthorTitle:
		if q.Terms(qt) == "" {
			return nil, nil
		}
		params.Set("query.author", q.Author)
		params.Set("query.title", q.Title)
	default:
		return nil, fmt.Errorf("unsupported query type %q", qt)
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}

	var resp struct {
		Message struct {
			Items []crossrefWork `json:"items"`
		} `json:"message"`
	}
	if err := c.getJSON(ctx, "Crossref", crossrefWorksBase+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching %s: %w", qt, err)
	}

	recs := make([]types.CandidateRecord, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		recs = append(recs, item.toCandidate())
	}
	return tag(recs, c.Name(), qt), nil
}

// Crossref API JSON structures.
type crossrefWork struct {
	DOI             string           `json:"DOI"`
	URL             string           `json:"URL"`
	Title           []string         `json:"title"`
	ContainerTitle  []string         `json:"container-title"`
	Author          []crossrefAuthor `json:"author"`
	Volume          string           `json:"volume"`
	Issue           string           `json:"issue"`
	Page            string           `json:"page"`
	PublishedPrint  *crossrefDate    `json:"published-print"`
	PublishedOnline *crossrefDate    `json:"published-online"`
	Published       *crossrefDate    `json:"published"`
	Issued          *crossrefDate    `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the first date-part year. issued is Crossref's canonical
// publication date; the print, online, and generic dates are fallbacks.
func (w crossrefWork) year() string {
	for _, d := range []*crossrefDate{w.Issued, w.PublishedPrint, w.PublishedOnline, w.Published} {
		if d != nil && len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 && d.DateParts[0][0] > 0 {
			return strconv.Itoa(d.DateParts[0][0])
		}
	}
	return ""
}

// crossrefAuthorName renders a person as "Family, Given" so multi-word
// family names survive name parsing. Organizations use their name.
func crossrefAuthorName(a crossrefAuthor) string {
	family, given := strings.TrimSpace(a.Family), strings.TrimSpace(a.Given)
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return strings.TrimSpace(a.Name)
	}
}

func (w crossrefWork) toCandidate() types.CandidateRecord {
	var rec types.CandidateRecord
	if len(w.Title) > 0 {
		setText(&rec.Fields, types.FieldTitle, w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		setText(&rec.Fields, types.FieldJournal, w.ContainerTitle[0])
	}

	var authors []string
	for _, a := range w.Author {
		if name := crossrefAuthorName(a); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) > 0 {
		rec.Authors = types.Some(authors)
	}

	setText(&rec.Fields, types.FieldVolume, w.Volume)
	setText(&rec.Fields, types.FieldIssue, w.Issue)
	setText(&rec.Fields, types.FieldPages, w.Page)
	setText(&rec.Fields, types.FieldYear, w.year())
	setText(&rec.Fields, types.FieldDOI, w.DOI)
	setText(&rec.Fields, types.FieldURL, w.URL)
	rec.ExternalID = normalize.DOI(w.DOI)
	return rec
}

// setText stores s when it is non-blank, leaving the field absent otherwise.
func setText(f *types.Fields, name types.FieldName, s string) {
	if s = strings.TrimSpace(s); s != "" {
		f.Set(name, types.TextValue(s))
	}
}
