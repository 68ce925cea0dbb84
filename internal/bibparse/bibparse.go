// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibparse reads citation lists from JSON, CSV, CSL-YAML, and free
// text (plain, Markdown, LaTeX \bibitem blocks) into CitationRecords.
// Absent fields stay absent; a column or key that is present but empty
// yields a present-empty field.
package bibparse

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/internal/reference"
	"github.com/pdiddy/citecheck/pkg/types"
)

// ErrNoCitations is returned when an input yields no parseable citation.
var ErrNoCitations = errors.New("no citations found")

// textFormats are the extensions parsed as free text.
var textFormats = map[string]bool{"txt": true, "md": true, "tex": true, "bib": true}

// Load reads citations from path, choosing the parser by extension.
// Unknown extensions are parsed as plain text.
func Load(path string) ([]types.CitationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	var records []types.CitationRecord
	switch ext {
	case "json":
		records, err = ParseJSON(data)
	case "csv":
		records, err = ParseCSV(bytes.NewReader(data))
	case "yaml", "yml":
		records, err = ParseCSL(bytes.NewReader(data))
	default:
		if !textFormats[ext] {
			ext = "txt"
		}
		records = ParseText(string(data), ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCitations)
	}
	return records, nil
}

// ParseJSON reads an array of citation objects, or an object holding one
// under "citations". Non-object entries are skipped.
func ParseJSON(data []byte) ([]types.CitationRecord, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapped struct {
			Citations []json.RawMessage `json:"citations"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || wrapped.Citations == nil {
			return nil, fmt.Errorf("JSON input must be an array of citation objects")
		}
		entries = wrapped.Citations
	}

	var out []types.CitationRecord
	for i, raw := range entries {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			continue
		}
		c := types.CitationRecord{
			ID:           fmt.Sprintf("json:%d", i+1),
			SourceFormat: "json",
			Raw:          string(bytes.TrimSpace(raw)),
		}
		if id := scalar(obj["citation_id"]); id != nil && strings.TrimSpace(*id) != "" {
			c.ID = strings.TrimSpace(*id)
		}
		for _, name := range types.AllFields {
			v, ok := obj[string(name)]
			if !ok {
				continue
			}
			if name == types.FieldAuthors {
				if names, ok := authorList(v); ok {
					c.Authors = types.Some(names)
				}
				continue
			}
			if s := scalar(v); s != nil {
				c.Set(name, types.TextValue(*s))
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// scalar decodes a JSON string or number as text. null and other kinds
// return nil.
func scalar(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		s = n.String()
		return &s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		s = strconv.FormatBool(b)
		return &s
	}
	return nil
}

// authorList accepts an array of names or a single delimited string.
func authorList(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil && list != nil {
		names := []string{}
		for _, a := range list {
			if a == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(a)); s != "" {
				names = append(names, s)
			}
		}
		return names, true
	}
	if s := scalar(raw); s != nil {
		return normalize.SplitAuthors(*s), true
	}
	return nil, false
}

// isNull reports whether raw is missing or a JSON null, both of which mean
// the field is absent.
func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// ParseCSV reads a CSV file with a header row naming the fields.
func ParseCSV(r io.Reader) ([]types.CitationRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var out []types.CitationRecord
	for n := 1; ; n++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", n, err)
		}
		cell := func(name string) (string, bool) {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return "", false
			}
			return row[i], true
		}

		c := types.CitationRecord{
			ID:           fmt.Sprintf("csv:%d", n),
			SourceFormat: "csv",
			Raw:          strings.Join(row, ","),
		}
		if id, ok := cell("citation_id"); ok && strings.TrimSpace(id) != "" {
			c.ID = strings.TrimSpace(id)
		}
		for _, name := range types.AllFields {
			v, ok := cell(string(name))
			if !ok {
				continue
			}
			if name == types.FieldAuthors {
				c.Authors = types.Some(normalize.SplitAuthors(v))
				continue
			}
			c.Set(name, types.TextValue(v))
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseCSL reads a CSL-YAML reference list.
func ParseCSL(r io.Reader) ([]types.CitationRecord, error) {
	items, err := reference.ReadCSL(r)
	if err != nil {
		return nil, err
	}
	out := make([]types.CitationRecord, 0, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("yaml:%d", i+1)
		}
		out = append(out, types.CitationRecord{
			ID:           id,
			SourceFormat: "yaml",
			Fields:       reference.FromCSL(item),
		})
	}
	return out, nil
}
