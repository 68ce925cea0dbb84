// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/internal/similarity"
	"github.com/pdiddy/citecheck/pkg/types"
)

// JournalMatchThreshold is the journal similarity at or above which the
// citation's venue is accepted as written.
const JournalMatchThreshold = 0.78

// journalConflictThreshold separates a differently abbreviated venue from a
// different venue.
const journalConflictThreshold = 0.5

// Reconciliation is the per-field comparison of a citation against the
// chosen authoritative record.
type Reconciliation struct {
	Assessment map[types.FieldName]types.FieldAssessment
	Patch      types.CorrectionPatch
	Status     types.Status
}

// HasCriticalConflict reports whether any critical field is in conflict.
func (r Reconciliation) HasCriticalConflict() bool {
	for _, a := range r.Assessment {
		if a.Critical && a.State == types.StateConflict {
			return true
		}
	}
	return false
}

// DOICheck is what the DOI lookup established about the citation's DOI
// relative to the chosen record.
type DOICheck int

const (
	// DOIUnverified means no lookup ran or it failed without an answer.
	DOIUnverified DOICheck = iota
	// DOIMatched means the chosen record was reached by the DOI.
	DOIMatched
	// DOIOtherWork means the DOI is registered to a record other than the
	// chosen one.
	DOIOtherWork
	// DOINotFound means the source reported the DOI as unregistered.
	DOINotFound
)

// clearable reports whether a DOI the chosen record lacks should be removed
// from the citation.
func (d DOICheck) clearable() bool {
	return d == DOINotFound || d == DOIOtherWork
}

// Reconcile assesses every field of c against chosen and builds the patch
// that would make c agree with it. A DOI the chosen record lacks is cleared
// only when doi shows it is unregistered or belongs to another work.
func Reconcile(c types.CitationRecord, chosen types.CandidateRecord, doi DOICheck, cfg types.ResolveConfig) Reconciliation {
	r := Reconciliation{
		Assessment: make(map[types.FieldName]types.FieldAssessment, len(types.AllFields)),
		Patch:      types.CorrectionPatch{},
	}

	for _, name := range types.AllFields {
		a := types.FieldAssessment{Critical: cfg.IsCritical(name)}
		if raw, ok := c.Provided(name); ok {
			a.Provided = raw.Ptr()
		}
		input, hasInput := c.Get(name)
		cand, hasCand := chosen.Get(name)
		if name == types.FieldDOI && hasCand {
			cand = types.TextValue(normalize.DOI(cand.Text))
		}

		switch {
		case !hasInput && hasCand:
			a.State = types.StateMissing
			r.Patch[name] = types.SetOp(cand)
		case !hasInput:
			a.State = types.StateMissing
		case !hasCand:
			a.State = types.StateCorrect
			if name == types.FieldDOI && doi.clearable() {
				a.State = types.StateIncorrect
				r.Patch[name] = types.UnsetOp()
			}
		default:
			var score *float64
			a.State, score = compare(name, input, cand, a.Critical, cfg)
			a.Score = score
			if a.State != types.StateCorrect {
				r.Patch[name] = types.SetOp(cand)
			}
		}

		if a.State != types.StateCorrect && hasCand {
			a.Candidate = cand.Ptr()
		}
		r.Assessment[name] = a
	}

	switch {
	case r.HasCriticalConflict():
		r.Status = types.StatusCriticalMismatch
	case len(r.Patch) > 0:
		r.Status = types.StatusCorrected
	default:
		r.Status = types.StatusMatchFound
	}
	return r
}

// compare assesses a field both sides supply. critical fields escalate
// structural contradictions to conflict.
func compare(name types.FieldName, input, cand types.Value, critical bool, cfg types.ResolveConfig) (types.AssessmentState, *float64) {
	escalate := func(contradictory bool) types.AssessmentState {
		if critical && contradictory {
			return types.StateConflict
		}
		return types.StateIncorrect
	}

	switch name {
	case types.FieldTitle:
		score := similarity.Title(input.Text, cand.Text)
		if normalize.Compact(input.Text) == normalize.Compact(cand.Text) {
			return types.StateCorrect, &score
		}
		return escalate(score < cfg.TitleThreshold), &score

	case types.FieldAuthors:
		return compareAuthors(input.Names, cand.Names, escalate)

	case types.FieldJournal:
		score := similarity.Journal(input.Text, cand.Text)
		if score >= JournalMatchThreshold {
			return types.StateCorrect, &score
		}
		return escalate(score < journalConflictThreshold), &score

	case types.FieldYear:
		score := similarity.Year(input.Text, cand.Text)
		yi, okI := normalize.Year(input.Text)
		yc, okC := normalize.Year(cand.Text)
		if okI && okC && yi == yc {
			return types.StateCorrect, &score
		}
		if !okI || !okC {
			return types.StateIncorrect, &score
		}
		return escalate(abs(yi-yc) > 1), &score

	case types.FieldDOI:
		if normalize.SameDOI(input.Text, cand.Text) {
			return types.StateCorrect, nil
		}
		return escalate(true), nil

	case types.FieldURL:
		if sameURL(input.Text, cand.Text) {
			return types.StateCorrect, nil
		}
		return types.StateIncorrect, nil

	case types.FieldPages:
		if normalize.Pages(input.Text) == normalize.Pages(cand.Text) {
			return types.StateCorrect, nil
		}
		return types.StateIncorrect, nil

	default:
		if normalize.Text(input.Text) == normalize.Text(cand.Text) {
			return types.StateCorrect, nil
		}
		return types.StateIncorrect, nil
	}
}

// compareAuthors accepts the input list when every listed author matches
// and the list is complete or explicitly truncated with "et al.". A correct
// but partial list is missing authors.
func compareAuthors(input, cand []string, escalate func(bool) types.AssessmentState) (types.AssessmentState, *float64) {
	in, truncated := normalize.Names(input)
	out, _ := normalize.Names(cand)
	if len(in) == 0 {
		return types.StateMissing, nil
	}
	matched := similarity.MatchAuthors(in, out)
	score := float64(matched) / float64(len(in))

	switch {
	case matched == len(in) && (len(in) == len(out) || truncated):
		return types.StateCorrect, &score
	case matched == len(in):
		return types.StateMissing, &score
	case matched == 0:
		return escalate(true), &score
	default:
		return types.StateIncorrect, &score
	}
}

func sameURL(a, b string) bool {
	if normalize.IsDOI(a) && normalize.IsDOI(b) {
		return normalize.SameDOI(a, b)
	}
	return strings.TrimRight(normalize.URL(a), "/") == strings.TrimRight(normalize.URL(b), "/")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
