// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup retrieves candidate metadata records for citations from
// scholarly metadata services. Each backend (Crossref, OpenAlex, the offline
// catalog) implements Source.
package lookup

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// ErrNotFound is returned by LookupDOI when the backend has no record for
// the DOI.
var ErrNotFound = errors.New("record not found")

// Source looks up metadata records by DOI or by structured query.
// Implementations must be safe for concurrent use.
type Source interface {
	Name() string
	LookupDOI(ctx context.Context, doi string) (*types.CandidateRecord, error)
	Search(ctx context.Context, qt types.QueryType, q Query) ([]types.CandidateRecord, error)
}

// Query holds the citation terms used by the search strategies.
type Query struct {
	Title   string
	Authors []string
	// Author is the first author's family name.
	Author  string
	Journal string
	Year    string
}

// BuildQuery extracts search terms from a citation.
func BuildQuery(c types.CitationRecord) Query {
	var q Query
	if v, ok := c.Get(types.FieldTitle); ok {
		q.Title = v.Text
	}
	if v, ok := c.Get(types.FieldAuthors); ok {
		names, _ := normalize.Names(v.Names)
		for _, n := range names {
			q.Authors = append(q.Authors, n.Full)
		}
		if len(names) > 0 {
			q.Author = names[0].Family
		}
	}
	if v, ok := c.Get(types.FieldJournal); ok {
		q.Journal = v.Text
	}
	if v, ok := c.Get(types.FieldYear); ok {
		q.Year = v.Text
	}
	return q
}

// Terms returns the free-text terms for a strategy, or "" when the citation
// lacks what the strategy needs.
func (q Query) Terms(qt types.QueryType) string {
	switch qt {
	case types.QueryBibliographic:
		parts := []string{q.Title}
		parts = append(parts, q.Authors...)
		parts = append(parts, q.Journal, q.Year)
		return joinNonEmpty(parts)
	case types.QueryTitle:
		return strings.TrimSpace(q.Title)
	case types.QueryAuthorTitle:
		if q.Author == "" || strings.TrimSpace(q.Title) == "" {
			return ""
		}
		return joinNonEmpty([]string{q.Author, q.Title})
	}
	return ""
}

func joinNonEmpty(parts []string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// tag stamps provenance onto records returned by a backend.
func tag(recs []types.CandidateRecord, source string, qt types.QueryType) []types.CandidateRecord {
	for i := range recs {
		recs[i].Source = source
		recs[i].SourceQueryTypes = []types.QueryType{qt}
	}
	return recs
}

// Multi fans a query out to several sources and concatenates their records
// in source order.
type Multi struct {
	Sources []Source
}

// Name returns the backend identifier.
func (m *Multi) Name() string { return "multi" }

// LookupDOI returns the first record found, trying sources in order.
// ErrNotFound is returned only when every source reports it.
func (m *Multi) LookupDOI(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	var errs []error
	for _, s := range m.Sources {
		rec, err := s.LookupDOI(ctx, doi)
		if err == nil && rec != nil {
			return rec, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrNotFound
}

// Search queries every source concurrently. Records from sources that
// succeeded are returned alongside the joined errors of those that failed.
func (m *Multi) Search(ctx context.Context, qt types.QueryType, q Query) ([]types.CandidateRecord, error) {
	results := make([][]types.CandidateRecord, len(m.Sources))
	errs := make([]error, len(m.Sources))

	var g errgroup.Group
	for i, s := range m.Sources {
		g.Go(func() error {
			results[i], errs[i] = s.Search(ctx, qt, q)
			return nil
		})
	}
	_ = g.Wait()

	var all []types.CandidateRecord
	for _, r := range results {
		all = append(all, r...)
	}
	return all, errors.Join(errs...)
}
