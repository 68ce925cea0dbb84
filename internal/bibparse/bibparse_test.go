// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibparse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citecheck/pkg/types"
)

func get(t *testing.T, c types.CitationRecord, name types.FieldName) string {
	t.Helper()
	v, _ := c.Get(name)
	return v.Text
}

func names(c types.CitationRecord) []string {
	v, _ := c.Get(types.FieldAuthors)
	return v.Names
}

func TestParseJSON(t *testing.T) {
	data := []byte(`[
		{"citation_id": "a", "title": "Deep nets", "authors": "Smith, J.; Doe, A.", "year": 2020, "doi": null, "journal": ""},
		5,
		{"title": "Other", "authors": ["X Y", null, " "]}
	]`)
	recs, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	a := recs[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "json", a.SourceFormat)
	assert.Equal(t, "2020", get(t, a, types.FieldYear))
	assert.False(t, a.Present(types.FieldDOI), "null is absent")
	assert.True(t, a.Present(types.FieldJournal), "empty string is present")
	_, filled := a.Get(types.FieldJournal)
	assert.False(t, filled)
	assert.Equal(t, []string{"Smith, J.", "Doe, A."}, names(a))
	assert.Contains(t, a.Raw, `"citation_id": "a"`)

	b := recs[1]
	assert.Equal(t, "json:3", b.ID)
	assert.Equal(t, []string{"X Y"}, names(b))
	assert.False(t, b.Present(types.FieldURL))
}

func TestParseJSONNullFieldsAreAbsent(t *testing.T) {
	recs, err := ParseJSON([]byte(`[{"title": "X", "doi": null, "authors": null, "year": null}]`))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	c := recs[0]
	assert.Equal(t, "X", get(t, c, types.FieldTitle))
	for _, f := range []types.FieldName{types.FieldDOI, types.FieldAuthors, types.FieldYear} {
		assert.False(t, c.Present(f), "%s", f)
	}
}

func TestParseJSONWrapped(t *testing.T) {
	recs, err := ParseJSON([]byte(`{"citations": [{"title": "Deep nets"}]}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "json:1", recs[0].ID)

	_, err = ParseJSON([]byte(`{"items": []}`))
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	in := "citation_id,title,authors,year,doi\n" +
		",Deep nets,Smith J and Doe A,2019,\n" +
		"x2,Other,,2020,10.1/x\n"
	recs, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "csv:1", recs[0].ID)
	assert.Equal(t, []string{"Smith J", "Doe A"}, names(recs[0]))
	assert.True(t, recs[0].Present(types.FieldDOI))
	assert.False(t, recs[0].Present(types.FieldJournal), "no journal column")

	assert.Equal(t, "x2", recs[1].ID)
	assert.True(t, recs[1].Present(types.FieldAuthors))
	assert.Empty(t, names(recs[1]))
	assert.Equal(t, "10.1/x", get(t, recs[1], types.FieldDOI))
}

func TestParseTextPlain(t *testing.T) {
	text := `Vaswani, A. and Shazeer, N.: "Attention is all you need." Advances in Neural Information Processing Systems, 30, 5998-6008 (2017). doi:10.5555/3295222.3295349

Just some words without an ending

Smith, J.: "Routing in delay tolerant networks." Ad Hoc Networks 12(3), 1--9 (2019).`

	recs := ParseText(text, "txt")
	require.Len(t, recs, 2)

	c := recs[0]
	assert.Equal(t, "txt:1", c.ID)
	assert.Equal(t, "Attention is all you need", get(t, c, types.FieldTitle))
	assert.Equal(t, "10.5555/3295222.3295349", get(t, c, types.FieldDOI))
	assert.Equal(t, "2017", get(t, c, types.FieldYear))
	assert.Equal(t, []string{"Vaswani, A.", "Shazeer, N"}, names(c))
	assert.Equal(t, "Advances in Neural Information Processing Systems", get(t, c, types.FieldJournal))
	assert.Equal(t, "30", get(t, c, types.FieldVolume))
	assert.Equal(t, "5998-6008", get(t, c, types.FieldPages))
	assert.False(t, c.Present(types.FieldURL))

	d := recs[1]
	assert.Equal(t, "txt:3", d.ID)
	assert.Equal(t, "Ad Hoc Networks", get(t, d, types.FieldJournal))
	assert.Equal(t, "12", get(t, d, types.FieldVolume))
	assert.Equal(t, "3", get(t, d, types.FieldIssue))
	assert.Equal(t, "1-9", get(t, d, types.FieldPages))
	assert.Equal(t, "2019", get(t, d, types.FieldYear))
}

func TestParseTextBibitem(t *testing.T) {
	text := `\begin{thebibliography}{9}
\bibitem{vaswani17}
A. Vaswani and N. Shazeer: ` + "``Attention is all you need.''" + `
Advances in Neural Information Processing Systems 30 (2017).
\url{https://doi.org/10.5555/3295222.3295349}

\bibitem{nothing}
No title here
\end{thebibliography}`

	recs := ParseText(text, "tex")
	require.Len(t, recs, 1)
	c := recs[0]
	assert.Equal(t, "vaswani17", c.ID)
	assert.Equal(t, "vaswani17", c.BibitemKey)
	assert.Equal(t, "tex", c.SourceFormat)
	assert.Equal(t, "Attention is all you need", get(t, c, types.FieldTitle))
	assert.Equal(t, []string{"A. Vaswani", "N. Shazeer"}, names(c))
	assert.Equal(t, "10.5555/3295222.3295349", get(t, c, types.FieldDOI))
	assert.Equal(t, "https://doi.org/10.5555/3295222.3295349", get(t, c, types.FieldURL))
	assert.Equal(t, "2017", get(t, c, types.FieldYear))
	assert.Equal(t, "Advances in Neural Information Processing Systems", get(t, c, types.FieldJournal))
	assert.Equal(t, "30", get(t, c, types.FieldVolume))
}

func TestParseTextLines(t *testing.T) {
	text := "- Li, Y.: \"Graph neural networks for traffic forecasting.\" Transportation Research Part C, 110, 100-120 (2020).\n" +
		"- Unparseable line without an ending\n"
	recs := ParseText(text, "md")
	require.Len(t, recs, 1)
	c := recs[0]
	assert.Equal(t, "md:1", c.ID)
	assert.Equal(t, []string{"Li, Y"}, names(c))
	assert.Equal(t, "Transportation Research Part C", get(t, c, types.FieldJournal))
	assert.Equal(t, "110", get(t, c, types.FieldVolume))
	assert.Equal(t, "100-120", get(t, c, types.FieldPages))
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Nature 2001, reprinted (1999).", "1999"},
		{"Nature 2001; 2003.", "2003"},
		{"doi:10.1234/1998.2000 no year", ""},
		{"https://example.org/2015/paper (2019)", "2019"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, extractYear(tc.in), tc.in)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	recs, err := Load(write("refs.json", "\ufeff"+`[{"title": "Deep nets"}]`))
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = Load(write("refs.ref", `Smith, J.: "Routing in delay tolerant networks." Ad Hoc Networks (2019).`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "txt:1", recs[0].ID)

	recs, err = Load(write("refs.yaml", "- id: lovelace\n  type: article-journal\n  title: Notes\n  issued:\n    date-parts: [[1843]]\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "lovelace", recs[0].ID)
	assert.Equal(t, "1843", get(t, recs[0], types.FieldYear))

	_, err = Load(write("empty.txt", "nothing useful here"))
	assert.True(t, errors.Is(err, ErrNoCitations))

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
