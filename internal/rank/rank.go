// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank merges candidate records that describe the same work and
// orders the unique candidates by a weighted similarity to the citation.
package rank

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/internal/similarity"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Weights are the composite score weights per category. They sum to 1.
var Weights = map[types.Category]float64{
	types.CategoryTitle:   0.55,
	types.CategoryAuthors: 0.30,
	types.CategoryJournal: 0.10,
	types.CategoryYear:    0.05,
}

// IdentityKey returns the key under which candidates are considered the same
// work: the normalized DOI, or the normalized title plus year. It returns ""
// when the record has neither a DOI nor a title.
func IdentityKey(c types.CandidateRecord) string {
	if v, ok := c.Get(types.FieldDOI); ok {
		if doi := normalize.DOI(v.Text); doi != "" {
			return "doi:" + doi
		}
	}
	v, ok := c.Get(types.FieldTitle)
	if !ok {
		return ""
	}
	title := normalize.Title(v.Text)
	if title == "" {
		return ""
	}
	year := ""
	if y, ok := c.Get(types.FieldYear); ok {
		if n, ok := normalize.Year(y.Text); ok {
			year = strconv.Itoa(n)
		}
	}
	return "title:" + title + "|" + year
}

type keyed struct {
	key       string
	candidate types.CandidateRecord
}

// Deduplicate merges candidates sharing an identity key. The merged entry
// keeps the slot of the first occurrence; its content comes from the record
// retrieved by the higher-priority query type (first seen on ties), with
// empty fields filled from the other and provenance combined. Records
// without a DOI or title are never merged.
func Deduplicate(cands []types.CandidateRecord) ([]types.CandidateRecord, []string) {
	seen := make(map[string]int) // identity key → index in deduped
	var deduped []keyed

	for i, c := range cands {
		key := IdentityKey(c)
		if key == "" {
			deduped = append(deduped, keyed{key: fmt.Sprintf("record:%d", i), candidate: c})
			continue
		}
		if idx, ok := seen[key]; ok {
			deduped[idx].candidate = merge(deduped[idx].candidate, c)
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, keyed{key: key, candidate: c})
	}

	out := make([]types.CandidateRecord, len(deduped))
	keys := make([]string, len(deduped))
	for i, d := range deduped {
		out[i] = d.candidate
		keys[i] = d.key
	}
	return out, keys
}

// merge combines two records for the same work.
func merge(kept, other types.CandidateRecord) types.CandidateRecord {
	if other.BestQuery().Priority() < kept.BestQuery().Priority() {
		kept, other = other, kept
	}
	for _, f := range types.AllFields {
		if _, ok := kept.Get(f); ok {
			continue
		}
		if v, ok := other.Get(f); ok {
			kept.Set(f, v)
		}
	}
	if kept.ExternalID == "" {
		kept.ExternalID = other.ExternalID
	}
	kept.SourceQueryTypes = mergeQueryTypes(kept.SourceQueryTypes, other.SourceQueryTypes)
	kept.Source = mergeSources(kept.Source, other.Source)
	return kept
}

func mergeQueryTypes(a, b []types.QueryType) []types.QueryType {
	out := append([]types.QueryType(nil), a...)
	for _, q := range b {
		dup := false
		for _, have := range out {
			if have == q {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

func mergeSources(a, b string) string {
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	for _, s := range strings.Split(a, ",") {
		if s == b {
			return a
		}
	}
	return a + "," + b
}

// Components scores a candidate against the citation in every category.
// A category the citation does not supply is recorded as nil.
func Components(citation types.CitationRecord, cand types.CandidateRecord) types.ComponentScores {
	scores := make(types.ComponentScores, len(types.Categories))
	for _, cat := range types.Categories {
		input, ok := citation.Get(cat.Field())
		if !ok {
			scores[cat] = nil
			continue
		}
		candidate, _ := cand.Get(cat.Field())
		s, ok := similarity.Score(cat, input, candidate)
		if !ok {
			scores[cat] = nil
			continue
		}
		s = round(s)
		scores[cat] = &s
	}
	return scores
}

// Composite is the weighted sum of the defined component scores. Undefined
// components contribute nothing.
func Composite(scores types.ComponentScores) float64 {
	total := 0.0
	for _, cat := range types.Categories {
		if s, ok := scores.Get(cat); ok {
			total += Weights[cat] * s
		}
	}
	return round(total)
}

// Rank deduplicates, scores, and orders candidates for a citation. Ties keep
// retrieval order. Ranks are dense from 1. maxCandidates > 0 truncates the
// ranked list. The result is never nil.
func Rank(citation types.CitationRecord, cands []types.CandidateRecord, maxCandidates int) []types.ScoredCandidate {
	unique, keys := Deduplicate(cands)

	scored := make([]types.ScoredCandidate, len(unique))
	for i, c := range unique {
		comps := Components(citation, c)
		scored[i] = types.ScoredCandidate{
			IdentityKey:     keys[i],
			CompositeScore:  Composite(comps),
			ComponentScores: comps,
			Candidate:       c,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})

	if maxCandidates > 0 && len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

// round trims floating-point noise so reports and comparisons are stable.
func round(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}
