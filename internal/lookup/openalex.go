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

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex API.
type OpenAlex struct {
	*client

	// Email is sent as mailto parameter for polite pool access.
	Email string

	// Rows is the number of works requested per search.
	Rows int
}

// NewOpenAlex returns an OpenAlex backend configured from cfg.
func NewOpenAlex(cfg types.LookupConfig) *OpenAlex {
	rows := cfg.Rows
	if rows <= 0 {
		rows = 5
	}
	return &OpenAlex{client: newClient(cfg), Email: cfg.Email, Rows: rows}
}

// Name returns the backend identifier.
func (o *OpenAlex) Name() string { return "openalex" }

// LookupDOI fetches the work with the given DOI.
func (o *OpenAlex) LookupDOI(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	doi = normalize.DOI(doi)
	if doi == "" {
		return nil, ErrNotFound
	}
	reqURL := openAlexWorksBase + "/" + normalize.DOIResolver + doi
	if o.Email != "" {
		reqURL += "?" + url.Values{"mailto": {o.Email}}.Encode()
	}

	var work openAlexWork
	if err := o.getJSON(ctx, "OpenAlex", reqURL, &work); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("looking up DOI %s: %w", doi, err)
	}
	rec := work.toCandidate()
	rec.Source = o.Name()
	rec.SourceQueryTypes = []types.QueryType{types.QueryDOI}
	return &rec, nil
}

// Search runs one query strategy against the works search.
func (o *OpenAlex) Search(ctx context.Context, qt types.QueryType, q Query) ([]types.CandidateRecord, error) {
	params := url.Values{
		"per_page": {strconv.Itoa(o.Rows)},
		"page":     {"1"},
	}
	switch qt {
	case types.QueryBibliographic, types.QueryAuthorTitle:
		terms := q.Terms(qt)
		if terms == "" {
			return nil, nil
		}
		params.Set("search", terms)
	case types.QueryTitle:
		if q.Terms(qt) == "" {
			return nil, nil
		}
		// Filter values cannot contain commas.
		params.Set("filter", "title.search:"+strings.ReplaceAll(q.Title, ",", " "))
	default:
		return nil, fmt.Errorf("unsupported query type %q", qt)
	}
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	var resp struct {
		Results []openAlexWork `json:"results"`
	}
	if err := o.getJSON(ctx, "OpenAlex", openAlexWorksBase+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching %s: %w", qt, err)
	}

	recs := make([]types.CandidateRecord, 0, len(resp.Results))
	for _, w := range resp.Results {
		recs = append(recs, w.toCandidate())
	}
	return tag(recs, o.Name(), qt), nil
}

// OpenAlex API JSON structures.
type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DisplayName     string               `json:"display_name"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
	Biblio          openAlexBiblio       `json:"biblio"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingURL string          `json:"landing_page_url"`
	Source     *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

func (w openAlexWork) toCandidate() types.CandidateRecord {
	var rec types.CandidateRecord

	title := w.Title
	if title == "" {
		title = w.DisplayName
	}
	setText(&rec.Fields, types.FieldTitle, title)

	var authors []string
	for _, a := range w.Authorships {
		if name := strings.TrimSpace(a.Author.DisplayName); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) > 0 {
		rec.Authors = types.Some(authors)
	}

	if loc := w.PrimaryLocation; loc != nil {
		if loc.Source != nil {
			setText(&rec.Fields, types.FieldJournal, loc.Source.DisplayName)
		}
	}

	setText(&rec.Fields, types.FieldVolume, w.Biblio.Volume)
	setText(&rec.Fields, types.FieldIssue, w.Biblio.Issue)
	pages := w.Biblio.FirstPage
	if w.Biblio.LastPage != "" && w.Biblio.LastPage != w.Biblio.FirstPage {
		pages += "-" + w.Biblio.LastPage
	}
	setText(&rec.Fields, types.FieldPages, pages)
	if w.PublicationYear > 0 {
		setText(&rec.Fields, types.FieldYear, strconv.Itoa(w.PublicationYear))
	}

	// OpenAlex reports DOIs as resolver URLs.
	if doi := normalize.DOI(w.DOI); doi != "" {
		setText(&rec.Fields, types.FieldDOI, doi)
		setText(&rec.Fields, types.FieldURL, w.DOI)
		rec.ExternalID = doi
	} else {
		rec.ExternalID = w.ID
		if w.PrimaryLocation != nil {
			setText(&rec.Fields, types.FieldURL, w.PrimaryLocation.LandingURL)
		}
	}
	return rec
}
