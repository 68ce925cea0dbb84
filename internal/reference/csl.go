// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reference

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// The field names follow the CSL-JSON/CSL-YAML schema so output is
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// String joins the name as "Family, Given", or returns the literal. The
// comma keeps multi-word family names intact when the name is parsed again.
func (n CSLName) String() string {
	if n.Literal != "" {
		return n.Literal
	}
	family, given := strings.TrimSpace(n.Family), strings.TrimSpace(n.Given)
	if family == "" || given == "" {
		return family + given
	}
	return family + ", " + given
}

// CSLDate is a date in CSL date-parts form.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// Entry pairs a citation ID with the fields to export.
type Entry struct {
	ID     string
	Fields types.Fields
}

// FormatCSL writes entries as a CSL-YAML list to w.
func FormatCSL(w io.Writer, entries []Entry) error {
	items := make([]CSLItem, len(entries))
	for i, e := range entries {
		items[i] = ToCSL(e.ID, e.Fields)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ReadCSL decodes a CSL-YAML list.
func ReadCSL(r io.Reader) ([]CSLItem, error) {
	var items []CSLItem
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding CSL-YAML: %w", err)
	}
	return items, nil
}

// ToCSL converts citation fields to a CSL article entry.
func ToCSL(id string, f types.Fields) CSLItem {
	item := CSLItem{
		ID:             id,
		Type:           "article-journal",
		Title:          text(f, types.FieldTitle),
		ContainerTitle: text(f, types.FieldJournal),
		Volume:         text(f, types.FieldVolume),
		Issue:          text(f, types.FieldIssue),
		Page:           normalize.Pages(text(f, types.FieldPages)),
		DOI:            normalize.DOI(text(f, types.FieldDOI)),
		URL:            text(f, types.FieldURL),
	}
	for _, a := range authors(f) {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if year, ok := normalize.Year(text(f, types.FieldYear)); ok {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}
	return item
}

// FromCSL converts a CSL entry back to citation fields.
func FromCSL(item CSLItem) types.Fields {
	var f types.Fields
	set := func(name types.FieldName, s string) {
		if s = strings.TrimSpace(s); s != "" {
			f.Set(name, types.TextValue(s))
		}
	}
	set(types.FieldTitle, item.Title)
	set(types.FieldJournal, item.ContainerTitle)
	set(types.FieldVolume, item.Volume)
	set(types.FieldIssue, item.Issue)
	set(types.FieldPages, item.Page)
	set(types.FieldDOI, normalize.DOI(item.DOI))
	set(types.FieldURL, item.URL)
	if d := item.Issued; d != nil && len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 && d.DateParts[0][0] > 0 {
		set(types.FieldYear, strconv.Itoa(d.DateParts[0][0]))
	}
	var names []string
	for _, a := range item.Author {
		if s := a.String(); s != "" {
			names = append(names, s)
		}
	}
	if len(names) > 0 {
		f.Authors = types.Some(names)
	}
	return f
}

// parseAuthorName splits a display name into CSL family/given parts.
// "Family, Given" is honoured; otherwise the last token is the family name.
// Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
