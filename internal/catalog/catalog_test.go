// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citecheck/internal/lookup"
	"github.com/pdiddy/citecheck/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog", "works.db"), 3)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func work(title, doi, year, journal string, authors ...string) types.CandidateRecord {
	var rec types.CandidateRecord
	rec.Title = types.Some(title)
	if doi != "" {
		rec.DOI = types.Some(doi)
	}
	if year != "" {
		rec.Year = types.Some(year)
	}
	if journal != "" {
		rec.Journal = types.Some(journal)
	}
	if len(authors) > 0 {
		rec.Authors = types.Some(authors)
	}
	return rec
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	n, err := s.Upsert(context.Background(), []types.CandidateRecord{
		work("Routing in delay tolerant networks", "10.1/DTN", "2019", "Ad Hoc Networks", "Jane Smith", "Ali Khan"),
		work("Graph neural networks for traffic forecasting", "", "2020", "Transportation Research Part C", "Yu Li"),
		work("Attention is all you need", "10.5555/3295222.3295349", "2017", "NeurIPS", "Ashish Vaswani"),
		{},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n, "record without doi or title is skipped")
}

func TestUpsertAndCount(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	// Re-importing the same works replaces them.
	_, err := s.Upsert(context.Background(), []types.CandidateRecord{
		work("Routing in delay tolerant networks", "https://doi.org/10.1/dtn", "2019", "Ad Hoc Networks", "Jane Smith"),
	})
	require.NoError(t, err)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec, err := s.LookupDOI(context.Background(), "10.1/dtn")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Smith"}, rec.Authors.Value)
}

func TestLookupDOI(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	rec, err := s.LookupDOI(context.Background(), "doi:10.1/dtn")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Routing in delay tolerant networks", rec.Title.Value)
	assert.Equal(t, "catalog", rec.Source)
	assert.Equal(t, []types.QueryType{types.QueryDOI}, rec.SourceQueryTypes)
	assert.Equal(t, "10.1/dtn", rec.ExternalID)

	_, err = s.LookupDOI(context.Background(), "10.9/none")
	assert.True(t, errors.Is(err, lookup.ErrNotFound))

	_, err = s.LookupDOI(context.Background(), "")
	assert.True(t, errors.Is(err, lookup.ErrNotFound))
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	tests := []struct {
		name      string
		qt        types.QueryType
		q         lookup.Query
		wantFirst string
		wantNone  bool
	}{
		{
			name:      "title tokens",
			qt:        types.QueryTitle,
			q:         lookup.Query{Title: "Routeing in delay-tolerant networks"},
			wantFirst: "Routing in delay tolerant networks",
		},
		{
			name:      "author and title",
			qt:        types.QueryAuthorTitle,
			q:         lookup.Query{Author: "Li", Title: "Graph networks for forecasting"},
			wantFirst: "Graph neural networks for traffic forecasting",
		},
		{
			name:     "author title needs an author",
			qt:       types.QueryAuthorTitle,
			q:        lookup.Query{Title: "Attention is all you need"},
			wantNone: true,
		},
		{
			name:     "no overlap",
			qt:       types.QueryTitle,
			q:        lookup.Query{Title: "Quantum chromodynamics"},
			wantNone: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := s.Search(context.Background(), tc.qt, tc.q)
			require.NoError(t, err)
			if tc.wantNone {
				assert.Empty(t, recs)
				return
			}
			require.NotEmpty(t, recs)
			assert.LessOrEqual(t, len(recs), 3)
			assert.Equal(t, tc.wantFirst, recs[0].Title.Value)
			assert.Equal(t, []types.QueryType{tc.qt}, recs[0].SourceQueryTypes)
		})
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "works.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
		{"title": "Deep nets", "doi": "10.1/deep", "year": "2015", "authors": ["Yann LeCun"], "source_query_types": []}
	]`), 0o644))
	yamlPath := filepath.Join(dir, "works.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`- id: lovelace
  type: article-journal
  title: Notes on the analytical engine
  author:
    - family: Lovelace
      given: Ada
  issued:
    date-parts: [[1843]]
`), 0o644))

	s := testStore(t)
	n, err := s.ImportFile(context.Background(), jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.ImportFile(context.Background(), yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := s.Search(context.Background(), types.QueryTitle, lookup.Query{Title: "analytical engine"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "lovelace", recs[0].ExternalID)
	assert.Equal(t, []string{"Lovelace, Ada"}, recs[0].Authors.Value)
	assert.Equal(t, "1843", recs[0].Year.Value)

	_, err = s.ImportFile(context.Background(), filepath.Join(dir, "works.csv"))
	assert.Error(t, err)
}
