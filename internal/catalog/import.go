// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/internal/reference"
	"github.com/pdiddy/citecheck/pkg/types"
)

// ImportFile loads works from a JSON array of candidate records or a
// CSL-YAML reference list, chosen by extension, and upserts them.
func (s *Store) ImportFile(ctx context.Context, path string) (int, error) {
	recs, err := ReadWorks(path)
	if err != nil {
		return 0, err
	}
	n, err := s.Upsert(ctx, recs)
	if err != nil {
		return n, fmt.Errorf("importing %s: %w", path, err)
	}
	return n, nil
}

// ReadWorks parses a works file without storing it.
func ReadWorks(path string) ([]types.CandidateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var recs []types.CandidateRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return recs, nil
	case ".yaml", ".yml":
		items, err := reference.ReadCSL(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		recs := make([]types.CandidateRecord, 0, len(items))
		for _, item := range items {
			id := normalize.DOI(item.DOI)
			if id == "" {
				id = item.ID
			}
			recs = append(recs, types.CandidateRecord{Fields: reference.FromCSL(item), ExternalID: id})
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("unsupported catalog file %s: want .json, .yaml, or .yml", path)
	}
}
