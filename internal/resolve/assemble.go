// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"github.com/pdiddy/citecheck/internal/reference"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Result error messages.
const (
	MsgCriticalMismatch     = "Critical mismatch in one or more required fields"
	MsgNoCandidates         = "No candidates returned by metadata lookup"
	MsgInsufficientMetadata = "Insufficient metadata for lookup"
)

// userInputLabels names what a user must supply when a citation cannot be
// resolved, in the order they are requested.
var userInputLabels = []struct {
	field types.FieldName
	label string
}{
	{types.FieldDOI, "DOI"},
	{types.FieldTitle, "full exact title"},
	{types.FieldAuthors, "full author list"},
	{types.FieldJournal, "venue/journal name"},
	{types.FieldYear, "publication year"},
}

// Outcome gathers everything known about one resolution attempt.
type Outcome struct {
	Citation types.CitationRecord
	Ranked   []types.ScoredCandidate
	Decision Decision

	// Reconciliation is set when a record was chosen.
	Reconciliation *Reconciliation
	MatchedBy      types.MatchedBy

	// Chosen is the scored record reconciled against.
	Chosen       *types.ScoredCandidate
	SelectedRank int

	// Err is a failure message; it forces an unresolved result.
	Err string
}

// Assemble builds the result for one citation. A pending selection leaves
// the assessment and patch nil; nothing is guessed.
func Assemble(o Outcome, cfg types.ResolveConfig) types.CitationResult {
	c := o.Citation
	res := types.CitationResult{
		CitationID:       c.ID,
		SourceFormat:     c.SourceFormat,
		MatchedBy:        types.MatchedByNone,
		CandidateMatches: o.Ranked,
		DOIConflict:      o.Decision.DOIConflict,
	}
	if res.CandidateMatches == nil {
		res.CandidateMatches = []types.ScoredCandidate{}
	}
	if len(o.Ranked) > 0 {
		res.RecommendedCandidateRank = 1
	}
	res.Confidence = confidence(o)

	switch {
	case o.Err == "" && o.Reconciliation != nil:
		rc := o.Reconciliation
		res.Status = rc.Status
		res.MatchedBy = o.MatchedBy
		res.FieldAssessment = rc.Assessment
		res.CorrectionPatch = rc.Patch
		res.SelectedCandidateRank = o.SelectedRank
		if rc.Status == types.StatusCriticalMismatch {
			res.Error = MsgCriticalMismatch
		}
		if cfg.EmitCorrectedReference {
			ref := reference.Render(c, reference.Apply(c.Fields, rc.Patch))
			res.CorrectedReference = &ref
		}

	case o.Err == "" && o.Decision.Kind == DecisionSelectionRequired:
		res.Status = types.StatusUnresolved
		res.SelectionRequired = true
		res.SelectionReason = o.Decision.Reason

	default:
		res.Status = types.StatusUnresolved
		res.Error = o.Err
		if res.Error == "" {
			res.Error = MsgNoCandidates
		}
		res.FieldAssessment = neutralAssessment(c, cfg)
		res.CorrectionPatch = types.CorrectionPatch{}
		res.RequiredUserInputs = requiredUserInputs(c)
		if cfg.EmitCorrectedReference {
			ref := reference.Render(c, c.Fields)
			res.CorrectedReference = &ref
		}
	}
	return res
}

func confidence(o Outcome) types.Confidence {
	var conf types.Confidence
	scored := o.Chosen
	if scored == nil {
		scored = o.Decision.Top
	}
	if scored == nil {
		return conf
	}
	composite := scored.CompositeScore
	conf.CompositeScore = &composite
	if s, ok := scored.ComponentScores.Get(types.CategoryTitle); ok {
		conf.TitleScore = &s
	}
	if o.Decision.Top != nil {
		gap := o.Decision.Gap
		conf.Gap = &gap
	}
	return conf
}

// neutralAssessment marks supplied fields correct and the rest missing,
// since nothing authoritative was found to compare against.
func neutralAssessment(c types.CitationRecord, cfg types.ResolveConfig) map[types.FieldName]types.FieldAssessment {
	out := make(map[types.FieldName]types.FieldAssessment, len(types.AllFields))
	for _, name := range types.AllFields {
		a := types.FieldAssessment{State: types.StateMissing, Critical: cfg.IsCritical(name)}
		if raw, ok := c.Provided(name); ok {
			a.Provided = raw.Ptr()
		}
		if _, ok := c.Get(name); ok {
			a.State = types.StateCorrect
		}
		out[name] = a
	}
	return out
}

// requiredUserInputs lists the identifying fields the citation lacks, or all
// of them when none is missing and the citation still did not resolve.
func requiredUserInputs(c types.CitationRecord) []string {
	var missing, all []string
	for _, u := range userInputLabels {
		all = append(all, u.label)
		if _, ok := c.Get(u.field); !ok {
			missing = append(missing, u.label)
		}
	}
	if len(missing) == 0 {
		return all
	}
	return missing
}
