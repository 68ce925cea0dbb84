// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection reads and writes the second-pass selection map: a JSON
// object mapping citation IDs to the 1-based rank of the chosen candidate.
package selection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pdiddy/citecheck/pkg/types"
)

// ErrInvalidRank is returned for a rank below 1 or a selection-required
// result with no recommended rank.
var ErrInvalidRank = errors.New("invalid selection rank")

// Load reads a selection map from path and validates every rank.
func Load(path string) (types.SelectionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selection map: %w", err)
	}
	var m types.SelectionMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing selection map %s: %w", path, err)
	}
	if err := Validate(m); err != nil {
		return nil, fmt.Errorf("selection map %s: %w", path, err)
	}
	return m, nil
}

// Validate checks that every rank is at least 1.
func Validate(m types.SelectionMap) error {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("empty citation id: %w", ErrInvalidRank)
		}
		if m[id] < 1 {
			return fmt.Errorf("citation %s: rank %d: %w", id, m[id], ErrInvalidRank)
		}
	}
	return nil
}

// Build derives a selection map from first-pass results, choosing the
// recommended rank for every result that requires a selection.
func Build(results []types.CitationResult) (types.SelectionMap, error) {
	m := types.SelectionMap{}
	for _, r := range results {
		if !r.SelectionRequired {
			continue
		}
		if r.CitationID == "" {
			return nil, fmt.Errorf("selection-required result has no citation id")
		}
		if r.RecommendedCandidateRank < 1 {
			return nil, fmt.Errorf("citation %s has no recommended rank: %w", r.CitationID, ErrInvalidRank)
		}
		m[r.CitationID] = r.RecommendedCandidateRank
	}
	return m, nil
}

// Write saves m as indented JSON.
func Write(path string, m types.SelectionMap) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling selection map: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing selection map: %w", err)
	}
	return nil
}

// ReadResults loads first-pass results from a run report, or from a bare
// JSON array of results.
func ReadResults(path string) ([]types.CitationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("[")) {
		var results []types.CitationResult
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("parsing results %s: %w", path, err)
		}
		return results, nil
	}
	var report types.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return report.Results, nil
}
