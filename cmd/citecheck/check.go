// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/citecheck/internal/bibparse"
	"github.com/pdiddy/citecheck/internal/reference"
	"github.com/pdiddy/citecheck/internal/resolve"
	"github.com/pdiddy/citecheck/internal/selection"
	"github.com/pdiddy/citecheck/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <input>",
	Short: "Resolve a citation list and report corrections",
	Long: `Check parses the input (JSON, CSV, CSL-YAML, plain text, Markdown, or
LaTeX \bibitem lists), looks up each citation, and writes a JSON run report
with per-field assessments and correction patches.

Citations whose best match is uncertain are marked selection_required. Pass a
selection map from "citecheck select" with --selection-map to resolve them in
a second pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("selection-map", "", "JSON file mapping citation_id to the chosen candidate rank")
	checkCmd.Flags().StringP("output", "o", "", "write the run report to this file instead of stdout")
	checkCmd.Flags().String("csl", "", "also write corrected references as CSL-YAML to this file")
	checkCmd.Flags().String("source", "", "override lookup.source: crossref, openalex, catalog, or multi")
	checkCmd.Flags().Int("workers", 0, "override resolve.workers")
	checkCmd.Flags().Bool("no-summary", false, "do not print the summary table")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if s, _ := cmd.Flags().GetString("source"); s != "" {
		cfg.Lookup.Source = types.LookupSource(s)
	}
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		cfg.Resolve.Workers = w
	}

	input := args[0]
	citations, err := bibparse.Load(input)
	if err != nil {
		return err
	}
	logger.Info("parsed citations", "input", input, "count", len(citations))

	var sel types.SelectionMap
	if p, _ := cmd.Flags().GetString("selection-map"); p != "" {
		if sel, err = selection.Load(p); err != nil {
			return err
		}
	}

	src, cleanup, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := resolve.NewEngine(src, cfg.Resolve, logger)
	results := engine.ResolveAll(ctx, citations, sel)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}

	report := types.RunReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Config:      cfg.Resolve,
		Summary:     types.Summarize(results),
		Results:     results,
	}

	outPath, _ := cmd.Flags().GetString("output")
	if err := writeReport(outPath, report); err != nil {
		return err
	}

	if cslPath, _ := cmd.Flags().GetString("csl"); cslPath != "" {
		if err := writeCSL(cslPath, citations, results); err != nil {
			return err
		}
	}

	if noSummary, _ := cmd.Flags().GetBool("no-summary"); !noSummary {
		printSummary(os.Stderr, report)
	}
	return nil
}

// writeReport encodes the report as indented JSON to path, or stdout when
// path is empty.
func writeReport(path string, report types.RunReport) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// writeCSL exports every citation with its patch applied. Results are in
// input order, so citations and results align by index.
func writeCSL(path string, citations []types.CitationRecord, results []types.CitationResult) error {
	entries := make([]reference.Entry, 0, len(citations))
	for i, c := range citations {
		fields := c.Fields
		if i < len(results) && results[i].CorrectionPatch != nil {
			fields = reference.Apply(fields, results[i].CorrectionPatch)
		}
		entries = append(entries, reference.Entry{ID: c.ID, Fields: fields})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSL file: %w", err)
	}
	defer f.Close()
	if err := reference.FormatCSL(f, entries); err != nil {
		return fmt.Errorf("writing CSL file: %w", err)
	}
	return nil
}
