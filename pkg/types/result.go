// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Category is a field family scored by the similarity scorer.
type Category string

const (
	CategoryTitle   Category = "title"
	CategoryAuthors Category = "authors"
	CategoryJournal Category = "journal"
	CategoryYear    Category = "year"
)

// Categories lists the scored categories in composite order.
var Categories = []Category{CategoryTitle, CategoryAuthors, CategoryJournal, CategoryYear}

// Field returns the citation field a category is computed from.
func (c Category) Field() FieldName {
	switch c {
	case CategoryAuthors:
		return FieldAuthors
	case CategoryJournal:
		return FieldJournal
	case CategoryYear:
		return FieldYear
	default:
		return FieldTitle
	}
}

// ComponentScores maps each category to its similarity. A nil entry means
// the citation did not supply the field, which is not the same as a score
// of zero.
type ComponentScores map[Category]*float64

// Get returns the score for c and whether it was defined.
func (s ComponentScores) Get(c Category) (float64, bool) {
	p, ok := s[c]
	if !ok || p == nil {
		return 0, false
	}
	return *p, true
}

// ScoredCandidate is a deduplicated candidate with its ranking data.
type ScoredCandidate struct {
	// Rank is the dense 1-based position by descending composite score.
	Rank int `json:"rank"`

	// IdentityKey is the deduplication key: normalized DOI, or normalized
	// title plus year when the DOI is missing.
	IdentityKey string `json:"identity_key"`

	CompositeScore  float64         `json:"composite_score"`
	ComponentScores ComponentScores `json:"component_scores"`
	Candidate       CandidateRecord `json:"candidate"`
}

// AssessmentState is the verdict for one field of a citation.
type AssessmentState string

const (
	StateCorrect   AssessmentState = "correct"
	StateMissing   AssessmentState = "missing"
	StateIncorrect AssessmentState = "incorrect"
	StateConflict  AssessmentState = "conflict"
)

// FieldAssessment records how one citation field compares to the chosen
// authoritative record.
type FieldAssessment struct {
	State    AssessmentState `json:"state"`
	Critical bool            `json:"critical"`

	// Provided is the citation's value; nil when the field was absent.
	Provided *Value `json:"provided,omitempty"`

	// Candidate is the authoritative value, reported when State is not correct.
	Candidate *Value `json:"candidate,omitempty"`

	// Score is the tolerant similarity used for the verdict, when one applies.
	Score *float64 `json:"score,omitempty"`
}

// PatchKind is a correction operation.
type PatchKind string

const (
	PatchSet   PatchKind = "set"
	PatchUnset PatchKind = "unset"
)

// PatchOp is one field correction.
type PatchOp struct {
	Op    PatchKind `json:"op"`
	Value *Value    `json:"value,omitempty"`
}

// SetOp returns a set operation for v.
func SetOp(v Value) PatchOp { return PatchOp{Op: PatchSet, Value: v.Ptr()} }

// UnsetOp returns an unset operation.
func UnsetOp() PatchOp { return PatchOp{Op: PatchUnset} }

// CorrectionPatch maps fields to corrections. It never holds an entry for a
// field assessed correct.
type CorrectionPatch map[FieldName]PatchOp

// Status is the citation-level outcome.
type Status string

const (
	StatusMatchFound       Status = "match_found"
	StatusCorrected        Status = "corrected"
	StatusCriticalMismatch Status = "critical_mismatch"
	StatusUnresolved       Status = "unresolved"
)

// Statuses lists every status in summary order.
var Statuses = []Status{StatusMatchFound, StatusCorrected, StatusCriticalMismatch, StatusUnresolved}

// MatchedBy records how the authoritative record was chosen.
type MatchedBy string

const (
	MatchedByDOI       MatchedBy = "doi"
	MatchedByShortlist MatchedBy = "shortlist"
	MatchedBySelection MatchedBy = "selection"
	MatchedByNone      MatchedBy = "none"
)

// SelectionReason explains why a human must choose among candidates.
type SelectionReason string

const (
	ReasonLowConfidence     SelectionReason = "low_confidence"
	ReasonAmbiguousTop2     SelectionReason = "ambiguous_top2"
	ReasonDOIConflictReview SelectionReason = "doi_conflict_review"
)

// Confidence carries the numbers behind a decision.
type Confidence struct {
	CompositeScore *float64 `json:"composite_score,omitempty"`
	Gap            *float64 `json:"gap,omitempty"`
	TitleScore     *float64 `json:"title_score,omitempty"`
}

// CorrectedReference is the citation re-rendered with the patch applied.
type CorrectedReference struct {
	Format string `json:"format"`
	Text   string `json:"text"`
}

// CitationResult is the immutable output for one citation and one pass.
type CitationResult struct {
	CitationID   string     `json:"citation_id"`
	SourceFormat string     `json:"source_format,omitempty"`
	Status       Status     `json:"status"`
	MatchedBy    MatchedBy  `json:"matched_by"`
	Confidence   Confidence `json:"confidence"`

	// FieldAssessment and CorrectionPatch stay nil while a selection is pending.
	FieldAssessment map[FieldName]FieldAssessment `json:"field_assessment,omitzero"`
	CorrectionPatch CorrectionPatch               `json:"correction_patch,omitzero"`

	CandidateMatches         []ScoredCandidate `json:"candidate_matches"`
	RecommendedCandidateRank int               `json:"recommended_candidate_rank,omitempty"`
	SelectionRequired        bool              `json:"selection_required"`
	SelectionReason          SelectionReason   `json:"selection_reason,omitempty"`
	SelectedCandidateRank    int               `json:"selected_candidate_rank,omitempty"`
	DOIConflict              bool              `json:"doi_conflict"`

	Error              string              `json:"error,omitempty"`
	RequiredUserInputs []string            `json:"required_user_inputs,omitempty"`
	CorrectedReference *CorrectedReference `json:"corrected_reference,omitempty"`
}

// SelectionMap is the second-pass input: citation ID to chosen 1-based rank.
type SelectionMap map[string]int

// Summary counts results by status.
type Summary struct {
	Total             int            `json:"total"`
	ByStatus          map[Status]int `json:"by_status"`
	SelectionRequired int            `json:"selection_required"`
}

// Summarize counts statuses over results.
func Summarize(results []CitationResult) Summary {
	s := Summary{Total: len(results), ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range results {
		s.ByStatus[r.Status]++
		if r.SelectionRequired {
			s.SelectionRequired++
		}
	}
	return s
}

// RunReport is the envelope written by a check run.
type RunReport struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Input       string           `json:"input"`
	Config      ResolveConfig    `json:"config"`
	Summary     Summary          `json:"summary"`
	Results     []CitationResult `json:"results"`
}
