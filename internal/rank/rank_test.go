// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citecheck/pkg/types"
)

func candidate(q types.QueryType, title, doi, year string, authors ...string) types.CandidateRecord {
	c := types.CandidateRecord{Source: "crossref", SourceQueryTypes: []types.QueryType{q}}
	if title != "" {
		c.Title = types.Some(title)
	}
	if doi != "" {
		c.DOI = types.Some(doi)
	}
	if year != "" {
		c.Year = types.Some(year)
	}
	if len(authors) > 0 {
		c.Authors = types.Some(authors)
	}
	return c
}

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, cat := range types.Categories {
		sum += Weights[cat]
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Len(t, Weights, len(types.Categories))
}

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name string
		c    types.CandidateRecord
		want string
	}{
		{"doi", candidate(types.QueryTitle, "T", "https://doi.org/10.1/ABC", "2020"), "doi:10.1/abc"},
		{"title and year", candidate(types.QueryTitle, "Deep Learning.", "", "2015"), "title:deep learning|2015"},
		{"title only", candidate(types.QueryTitle, "Deep Learning", "", ""), "title:deep learning|"},
		{"nothing", candidate(types.QueryTitle, "", "", "2015"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentityKey(tt.c))
		})
	}
}

func TestDeduplicatePrefersHigherPriorityQuery(t *testing.T) {
	fromTitle := candidate(types.QueryTitle, "Short title", "10.1/x", "")
	fromBib := candidate(types.QueryBibliographic, "Full Title", "10.1/X", "2020", "Ada Lovelace")
	fromBib.Source = "openalex"
	other := candidate(types.QueryTitle, "Other", "10.1/y", "2020")

	out, keys := Deduplicate([]types.CandidateRecord{fromTitle, other, fromBib})
	require.Len(t, out, 2)
	assert.Equal(t, []string{"doi:10.1/x", "doi:10.1/y"}, keys)

	merged := out[0]
	assert.Equal(t, "Full Title", merged.Title.Value, "content from the bibliographic record")
	assert.Equal(t, "2020", merged.Year.Value)
	assert.Equal(t, []types.QueryType{types.QueryBibliographic, types.QueryTitle}, merged.SourceQueryTypes)
	assert.Equal(t, "openalex,crossref", merged.Source)
}

func TestDeduplicateFillsEmptyFields(t *testing.T) {
	a := candidate(types.QueryBibliographic, "Deep Learning", "", "2015")
	b := candidate(types.QueryTitle, "deep learning.", "", "2015", "Yann LeCun")
	b.Journal = types.Some("Nature")

	out, _ := Deduplicate([]types.CandidateRecord{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "Deep Learning", out[0].Title.Value)
	assert.Equal(t, "Nature", out[0].Journal.Value)
	assert.Equal(t, []string{"Yann LeCun"}, out[0].Authors.Value)
}

func TestDeduplicateKeepsDifferentYears(t *testing.T) {
	a := candidate(types.QueryTitle, "Deep Learning", "", "2015")
	b := candidate(types.QueryTitle, "Deep Learning", "", "2016")
	out, _ := Deduplicate([]types.CandidateRecord{a, b})
	assert.Len(t, out, 2)
}

func TestComponentsMarkAbsentInput(t *testing.T) {
	citation := types.CitationRecord{ID: "c1"}
	citation.Title = types.Some("Attention Is All You Need")

	comps := Components(citation, candidate(types.QueryTitle, "Attention is all you need", "", "2017"))
	require.Contains(t, comps, types.CategoryJournal)
	assert.Nil(t, comps[types.CategoryJournal])
	assert.Nil(t, comps[types.CategoryAuthors])
	s, ok := comps.Get(types.CategoryTitle)
	require.True(t, ok)
	assert.Equal(t, 1.0, s)
	assert.InDelta(t, 0.55, Composite(comps), 1e-9)
}

func TestRankOrdersAndDeduplicates(t *testing.T) {
	citation := types.CitationRecord{ID: "c1"}
	citation.Title = types.Some("Attention Is All You Need")
	citation.Authors = types.Some([]string{"A. Vaswani"})
	citation.Year = types.Some("2017")

	weak := candidate(types.QueryTitle, "Something else entirely", "10.1/b", "1999", "B. Other")
	strong := candidate(types.QueryBibliographic, "Attention is all you need", "10.1/a", "2017", "Ashish Vaswani")
	dup := candidate(types.QueryAuthorTitle, "Attention is all you need", "10.1/A", "2017")

	ranked := Rank(citation, []types.CandidateRecord{weak, strong, dup}, 0)
	require.Len(t, ranked, 2)

	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "doi:10.1/a", ranked[0].IdentityKey)
	assert.InDelta(t, 0.90, ranked[0].CompositeScore, 1e-9)
	assert.Greater(t, ranked[0].CompositeScore, ranked[1].CompositeScore)
	assert.Equal(t, []types.QueryType{types.QueryBibliographic, types.QueryAuthorTitle}, ranked[0].Candidate.SourceQueryTypes)
}

func TestRankTiesKeepRetrievalOrderAndTruncate(t *testing.T) {
	citation := types.CitationRecord{ID: "c1"}
	citation.Title = types.Some("Unrelated words")

	a := candidate(types.QueryTitle, "Alpha", "10.1/a", "")
	b := candidate(types.QueryTitle, "Alpha", "10.1/b", "")
	c := candidate(types.QueryTitle, "Alpha", "10.1/c", "")

	ranked := Rank(citation, []types.CandidateRecord{a, b, c}, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "doi:10.1/a", ranked[0].IdentityKey)
	assert.Equal(t, "doi:10.1/b", ranked[1].IdentityKey)
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank(types.CitationRecord{}, nil, 0)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
