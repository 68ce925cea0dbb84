// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citecheck/internal/lookup"
	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/internal/rank"
	"github.com/pdiddy/citecheck/pkg/types"
)

// ErrRankOutOfRange is matched by RankError.
var ErrRankOutOfRange = errors.New("selection rank out of range")

// RankError reports a selected rank outside the candidates of this pass.
type RankError struct {
	Rank int
	Max  int
}

func (e *RankError) Error() string {
	return fmt.Sprintf("selection rank %d out of range (1..%d)", e.Rank, e.Max)
}

// Is makes RankError match ErrRankOutOfRange.
func (e *RankError) Is(target error) bool { return target == ErrRankOutOfRange }

// Selection is a second-pass choice of candidate rank. The zero value means
// no selection was supplied.
type Selection struct {
	Rank  int
	Valid bool
}

// SelectRank returns a selection of the given 1-based rank.
func SelectRank(rank int) Selection { return Selection{Rank: rank, Valid: true} }

// Engine resolves citations against a lookup source.
type Engine struct {
	lookup lookup.Source
	cfg    types.ResolveConfig
	logger *slog.Logger
}

// NewEngine returns an engine. A nil logger discards output.
func NewEngine(src lookup.Source, cfg types.ResolveConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{lookup: src, cfg: cfg, logger: logger}
}

// Resolve produces the result for one citation. It never fails: lookup
// errors and bad selections become unresolved results carrying an error.
func (e *Engine) Resolve(ctx context.Context, c types.CitationRecord, sel Selection) types.CitationResult {
	log := e.logger.With("citation_id", c.ID)
	out := Outcome{Citation: c}

	if !hasIdentity(c) {
		log.Warn("skipping lookup", "reason", "no doi, title, or authors")
		out.Err = MsgInsufficientMetadata
		return Assemble(out, e.cfg)
	}

	var cands []types.CandidateRecord
	doiRec, doiUnregistered := e.lookupDOI(ctx, log, c)

	if e.cfg.ShortlistTrigger == types.TriggerNever {
		if doiRec == nil {
			out.Err = MsgNoCandidates
			return Assemble(out, e.cfg)
		}
		return e.acceptDOI(c, doiRec)
	}
	if doiRec != nil {
		if !sel.Valid && e.cfg.ShortlistTrigger != types.TriggerAlways {
			rc := Reconcile(c, *doiRec, DOIMatched, e.cfg)
			if !rc.HasCriticalConflict() {
				log.Debug("accepted DOI record", "source", doiRec.Source)
				return e.acceptDOI(c, doiRec)
			}
			log.Debug("DOI record conflicts, running shortlist")
		}
		cands = append(cands, *doiRec)
	}

	cands = append(cands, e.shortlist(ctx, log, c)...)
	out.Ranked = rank.Rank(c, cands, e.cfg.MaxCandidates)
	out.Decision = Decide(c, out.Ranked, e.cfg)
	log.Debug("ranked candidates",
		"candidates", len(out.Ranked),
		"decision", out.Decision.Kind,
		"reason", out.Decision.Reason)

	if sel.Valid {
		if sel.Rank < 1 || sel.Rank > len(out.Ranked) {
			err := &RankError{Rank: sel.Rank, Max: len(out.Ranked)}
			log.Error("invalid selection", "error", err)
			out.Err = err.Error()
			return Assemble(out, e.cfg)
		}
		chosen := out.Ranked[sel.Rank-1]
		rc := Reconcile(c, chosen.Candidate, doiCheck(chosen.Candidate, doiRec, doiUnregistered), e.cfg)
		out.Reconciliation = &rc
		out.MatchedBy = types.MatchedBySelection
		out.Chosen = &chosen
		out.SelectedRank = sel.Rank
		return Assemble(out, e.cfg)
	}

	switch out.Decision.Kind {
	case DecisionNoCandidates:
		out.Err = MsgNoCandidates
	case DecisionAutoAccept:
		top := out.Decision.Top.Candidate
		rc := Reconcile(c, top, doiCheck(top, doiRec, doiUnregistered), e.cfg)
		out.Reconciliation = &rc
		out.MatchedBy = types.MatchedByShortlist
		out.Chosen = out.Decision.Top
	case DecisionSelectionRequired:
		// The DOI record alone, with nothing else found, is reconciled
		// directly; there is no alternative to choose from.
		if doiRec != nil && len(out.Ranked) == 1 && !out.Decision.DOIConflict && fromDOI(out.Ranked[0].Candidate) {
			rc := Reconcile(c, out.Ranked[0].Candidate, DOIMatched, e.cfg)
			out.Reconciliation = &rc
			out.MatchedBy = types.MatchedByDOI
			out.Chosen = &out.Ranked[0]
		}
	}
	return Assemble(out, e.cfg)
}

// ResolveAll resolves citations concurrently and returns results in input
// order. Selections naming no citation of the run are logged and ignored.
func (e *Engine) ResolveAll(ctx context.Context, citations []types.CitationRecord, selections types.SelectionMap) []types.CitationResult {
	known := make(map[string]bool, len(citations))
	for _, c := range citations {
		known[c.ID] = true
	}
	var unknown []string
	for id := range selections {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		e.logger.Error("selection names unknown citation", "citation_id", id)
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	results := make([]types.CitationResult, len(citations))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range citations {
		var sel Selection
		if r, ok := selections[c.ID]; ok {
			sel = SelectRank(r)
		}
		g.Go(func() error {
			results[i] = e.Resolve(ctx, c, sel)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// lookupDOI fetches the record for the citation's DOI, or nil when the
// citation has no DOI or the lookup fails. unregistered is true only when
// the source answered that the DOI does not exist.
func (e *Engine) lookupDOI(ctx context.Context, log *slog.Logger, c types.CitationRecord) (rec *types.CandidateRecord, unregistered bool) {
	v, ok := c.Get(types.FieldDOI)
	if !ok {
		return nil, false
	}
	doi := normalize.DOI(v.Text)
	if doi == "" {
		return nil, false
	}
	rec, err := e.lookup.LookupDOI(ctx, doi)
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		log.Info("DOI not registered", "doi", doi, "source", e.lookup.Name())
		return nil, true
	case err != nil:
		log.Warn("DOI lookup failed", "doi", doi, "source", e.lookup.Name(), "error", err)
		return nil, false
	case rec == nil:
		return nil, false
	}
	if !fromDOI(*rec) {
		rec.SourceQueryTypes = append(rec.SourceQueryTypes, types.QueryDOI)
	}
	return rec, false
}

// doiCheck classifies the citation's DOI against a record chosen from the
// shortlist or by selection.
func doiCheck(chosen types.CandidateRecord, doiRec *types.CandidateRecord, unregistered bool) DOICheck {
	switch {
	case fromDOI(chosen):
		return DOIMatched
	case doiRec != nil:
		return DOIOtherWork
	case unregistered:
		return DOINotFound
	default:
		return DOIUnverified
	}
}

// shortlist runs every search strategy in priority order. Failed queries
// contribute whatever partial records they returned.
func (e *Engine) shortlist(ctx context.Context, log *slog.Logger, c types.CitationRecord) []types.CandidateRecord {
	q := lookup.BuildQuery(c)
	var all []types.CandidateRecord
	for _, qt := range types.ShortlistQueries {
		if q.Terms(qt) == "" {
			continue
		}
		recs, err := e.lookup.Search(ctx, qt, q)
		if err != nil {
			log.Warn("shortlist query failed", "query_type", qt, "source", e.lookup.Name(), "error", err)
		}
		all = append(all, recs...)
	}
	return all
}

// acceptDOI reconciles the citation directly against its DOI record.
func (e *Engine) acceptDOI(c types.CitationRecord, rec *types.CandidateRecord) types.CitationResult {
	ranked := rank.Rank(c, []types.CandidateRecord{*rec}, e.cfg.MaxCandidates)
	rc := Reconcile(c, *rec, DOIMatched, e.cfg)
	out := Outcome{
		Citation:       c,
		Ranked:         ranked,
		Reconciliation: &rc,
		MatchedBy:      types.MatchedByDOI,
	}
	if len(ranked) > 0 {
		out.Chosen = &ranked[0]
	}
	return Assemble(out, e.cfg)
}

func fromDOI(rec types.CandidateRecord) bool {
	for _, q := range rec.SourceQueryTypes {
		if q == types.QueryDOI {
			return true
		}
	}
	return false
}

func hasIdentity(c types.CitationRecord) bool {
	for _, name := range []types.FieldName{types.FieldDOI, types.FieldTitle, types.FieldAuthors} {
		if _, ok := c.Get(name); ok {
			return true
		}
	}
	return false
}
