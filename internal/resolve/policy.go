// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve decides which metadata record a citation refers to and
// reconciles the citation's fields against it. Resolution runs in up to two
// passes: the first either auto-accepts a candidate or asks for a human
// selection, the second applies the selected rank.
package resolve

import (
	"math"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// DecisionKind is the outcome of the resolution policy.
type DecisionKind string

const (
	DecisionNoCandidates      DecisionKind = "no_candidates"
	DecisionAutoAccept        DecisionKind = "auto_accept"
	DecisionSelectionRequired DecisionKind = "selection_required"
)

// Decision is the policy verdict for one ranked candidate list.
type Decision struct {
	Kind   DecisionKind
	Reason types.SelectionReason

	// Top is the rank-1 candidate; nil for no_candidates.
	Top *types.ScoredCandidate

	// Gap is the lead of the top candidate over the runner-up, or over 1.0
	// when there is no runner-up.
	Gap float64

	DOIConflict bool
}

// Decide applies the thresholds in cfg to a ranked candidate list.
func Decide(c types.CitationRecord, ranked []types.ScoredCandidate, cfg types.ResolveConfig) Decision {
	if len(ranked) == 0 {
		return Decision{Kind: DecisionNoCandidates}
	}
	top := ranked[0]
	second := 1.0
	if len(ranked) > 1 {
		second = ranked[1].CompositeScore
	}
	d := Decision{
		Top: &top,
		Gap: math.Round((top.CompositeScore-second)*1e6) / 1e6,
	}

	if doiConflict(c, top.Candidate) {
		d.Kind = DecisionSelectionRequired
		d.Reason = types.ReasonDOIConflictReview
		d.DOIConflict = true
		return d
	}

	switch {
	case top.CompositeScore >= cfg.AutoAcceptThreshold && d.Gap >= cfg.AmbiguityGapThreshold:
		d.Kind = DecisionAutoAccept
	case top.CompositeScore < cfg.AutoAcceptThreshold:
		d.Kind = DecisionSelectionRequired
		d.Reason = types.ReasonLowConfidence
	default:
		d.Kind = DecisionSelectionRequired
		d.Reason = types.ReasonAmbiguousTop2
	}
	return d
}

// doiConflict reports whether the citation and candidate carry different
// DOIs. A candidate without a DOI does not conflict.
func doiConflict(c types.CitationRecord, cand types.CandidateRecord) bool {
	in, ok := c.Get(types.FieldDOI)
	if !ok || normalize.DOI(in.Text) == "" {
		return false
	}
	out, ok := cand.Get(types.FieldDOI)
	if !ok || normalize.DOI(out.Text) == "" {
		return false
	}
	return !normalize.SameDOI(in.Text, out.Text)
}
