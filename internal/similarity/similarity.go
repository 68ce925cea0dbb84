// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores how closely a candidate's field matches the
// citation's field. Scores are bounded to [0,1]; a field the citation does
// not supply has no score at all, which callers must keep distinct from 0.
package similarity

import (
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Journal scores for the tolerant match rules.
const (
	JournalAcronymScore = 0.95
	JournalPartialScore = 0.9
)

// Score compares input and candidate values for one category. ok is false
// when the input value is absent or empty; a missing candidate value
// scores 0.
func Score(cat types.Category, input, candidate types.Value) (score float64, ok bool) {
	if input.IsEmpty() {
		return 0, false
	}
	if candidate.IsEmpty() {
		return 0, true
	}
	switch cat {
	case types.CategoryTitle:
		return Title(input.Text, candidate.Text), true
	case types.CategoryAuthors:
		return Authors(input.Names, candidate.Names)
	case types.CategoryJournal:
		return Journal(input.Text, candidate.Text), true
	case types.CategoryYear:
		return Year(input.Text, candidate.Text), true
	}
	return 0, false
}

// Title is the larger of the character-level ratio over normalized titles
// and the token-set ratio.
func Title(a, b string) float64 {
	na, nb := normalize.Title(a), normalize.Title(b)
	if na == "" || nb == "" {
		return 0
	}
	return max(Ratio(na, nb), TokenSetRatio(na, nb))
}

// Authors returns the fraction of input authors matched to a distinct
// candidate author by family name and compatible given name. Truncation
// markers are ignored. ok is false when the input names no author.
func Authors(input, candidate []string) (score float64, ok bool) {
	in, _ := normalize.Names(input)
	if len(in) == 0 {
		return 0, false
	}
	cand, _ := normalize.Names(candidate)
	return float64(MatchAuthors(in, cand)) / float64(len(in)), true
}

// MatchAuthors counts input names paired one-to-one with compatible
// candidate names, regardless of order.
func MatchAuthors(input, candidate []normalize.Name) int {
	used := make([]bool, len(candidate))
	matched := 0
	for _, n := range input {
		for j, c := range candidate {
			if !used[j] && normalize.Compatible(n, c) {
				used[j] = true
				matched++
				break
			}
		}
	}
	return matched
}

// Journal scores venue names tolerant of abbreviation: exact 1.0, acronym
// against expansion 0.95, containment or abbreviated-token subset 0.9, and
// otherwise the character ratio.
func Journal(a, b string) float64 {
	na, nb := normalize.Journal(a), normalize.Journal(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if isAcronymOf(na, nb) || isAcronymOf(nb, na) {
		return JournalAcronymScore
	}
	ca, cb := strings.ReplaceAll(na, " ", ""), strings.ReplaceAll(nb, " ", "")
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return JournalPartialScore
	}
	if prefixSubset(na, nb) || prefixSubset(nb, na) {
		return JournalPartialScore
	}
	return Ratio(na, nb)
}

// isAcronymOf reports whether short is the initialism of long's
// significant words ("pnas" for "proceedings of the national academy of
// sciences").
func isAcronymOf(short, long string) bool {
	short = strings.ReplaceAll(short, " ", "")
	words := normalize.SignificantTokens(long)
	if len(words) < 2 || len(short) != len(words) {
		return false
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteRune([]rune(w)[0])
	}
	return b.String() == short
}

// prefixSubset reports whether every significant token of short is a
// prefix of a distinct later token of long, in order, so "eng appl" fits
// "engineering applications".
func prefixSubset(short, long string) bool {
	st := normalize.SignificantTokens(short)
	lt := normalize.SignificantTokens(long)
	if len(st) == 0 || len(st) > len(lt) {
		return false
	}
	j := 0
	for _, tok := range st {
		for j < len(lt) && !strings.HasPrefix(lt[j], tok) {
			j++
		}
		if j == len(lt) {
			return false
		}
		j++
	}
	return true
}

// Year scores 1 for the same year, 0.5 for adjacent years, else 0.
func Year(a, b string) float64 {
	ya, okA := normalize.Year(a)
	yb, okB := normalize.Year(b)
	if !okA || !okB {
		return 0
	}
	switch d := ya - yb; {
	case d == 0:
		return 1.0
	case d == 1 || d == -1:
		return 0.5
	default:
		return 0
	}
}
