// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citecheck/internal/catalog"
	"github.com/pdiddy/citecheck/internal/lookup"
	"github.com/pdiddy/citecheck/internal/reference"
	"github.com/pdiddy/citecheck/internal/secrets"
	"github.com/pdiddy/citecheck/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	t.Cleanup(viper.Reset)
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultResolveConfig(), cfg.Resolve)
	assert.Equal(t, types.SourceCrossref, cfg.Lookup.Source)
	assert.Equal(t, 30*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, "catalog/works.db", cfg.Catalog.Path)
}

func TestLoadConfigFile(t *testing.T) {
	resetViper(t)
	path := filepath.Join(t.TempDir(), "citecheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`resolve:
  auto_accept_threshold: 0.9
  critical_fields: [title, doi]
  shortlist_trigger: always
lookup:
  source: openalex
  timeout: 5s
output:
  emit_corrected_reference: false
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Resolve.AutoAcceptThreshold)
	assert.Equal(t, []types.FieldName{types.FieldTitle, types.FieldDOI}, cfg.Resolve.CriticalFields)
	assert.Equal(t, types.TriggerAlways, cfg.Resolve.ShortlistTrigger)
	assert.False(t, cfg.Resolve.EmitCorrectedReference)
	assert.Equal(t, types.SourceOpenAlex, cfg.Lookup.Source)
	assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	resetViper(t)
	viper.Set("resolve.title_threshold", 1.5)
	_, err := loadConfig()
	assert.ErrorContains(t, err, "title_threshold")
}

func TestBuildSource(t *testing.T) {
	loadedSecrets = secrets.Secrets{secrets.CrossrefEmail: "me@example.org"}
	t.Cleanup(func() { loadedSecrets = nil })

	cfg := types.Config{Lookup: types.DefaultLookupConfig()}

	src, cleanup, err := buildSource(cfg)
	require.NoError(t, err)
	cleanup()
	cr, ok := src.(*lookup.Crossref)
	require.True(t, ok)
	assert.Equal(t, "me@example.org", cr.Email)

	cfg.Lookup.Source = types.SourceCatalog
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "works.db")
	src, cleanup, err = buildSource(cfg)
	require.NoError(t, err)
	_, ok = src.(*catalog.Store)
	assert.True(t, ok)
	cleanup()

	cfg.Lookup.Source = types.SourceMulti
	src, cleanup, err = buildSource(cfg)
	require.NoError(t, err)
	m, ok := src.(*lookup.Multi)
	require.True(t, ok)
	assert.Len(t, m.Sources, 3)
	assert.Equal(t, "catalog", m.Sources[0].Name())
	cleanup()

	cfg.Lookup.Source = "scholar"
	_, _, err = buildSource(cfg)
	assert.ErrorContains(t, err, "unknown lookup source")
}

func TestPrintSummary(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	score := 0.912
	results := []types.CitationResult{
		{CitationID: "a", Status: types.StatusCorrected, MatchedBy: types.MatchedByDOI, Confidence: types.Confidence{CompositeScore: &score}},
		{CitationID: "b", Status: types.StatusUnresolved, MatchedBy: types.MatchedByNone, SelectionRequired: true,
			SelectionReason: types.ReasonAmbiguousTop2, CandidateMatches: make([]types.ScoredCandidate, 2)},
	}
	report := types.RunReport{Summary: types.Summarize(results), Results: results}

	var buf bytes.Buffer
	printSummary(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "0.912")
	assert.Contains(t, out, "ambiguous_top2 (2 candidates)")
	assert.Contains(t, out, "total: 2, match_found: 0, corrected: 1, critical_mismatch: 0, unresolved: 1, selection required: 1")
}

func TestWriteCSLAppliesPatch(t *testing.T) {
	var c types.CitationRecord
	c.ID = "smith19"
	c.Title = types.Some("Routeing in networks")
	results := []types.CitationResult{{
		CitationID: "smith19",
		CorrectionPatch: types.CorrectionPatch{
			types.FieldTitle: types.SetOp(types.TextValue("Routing in networks")),
		},
	}}

	path := filepath.Join(t.TempDir(), "refs.yaml")
	require.NoError(t, writeCSL(path, []types.CitationRecord{c}, results))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	items, err := reference.ReadCSL(f)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "smith19", items[0].ID)
	assert.Equal(t, "Routing in networks", items[0].Title)
}
