// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pdiddy/citecheck/pkg/types"
)

// statusColors maps each status to its console colour.
var statusColors = map[types.Status]*color.Color{
	types.StatusMatchFound:       color.New(color.FgGreen),
	types.StatusCorrected:        color.New(color.FgCyan),
	types.StatusCriticalMismatch: color.New(color.FgRed, color.Bold),
	types.StatusUnresolved:       color.New(color.FgYellow),
}

// printSummary writes one row per citation followed by the status totals.
// Colours follow fatih/color's terminal detection, including NO_COLOR.
func printSummary(w io.Writer, report types.RunReport) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			r.CitationID,
			statusLabel(r.Status),
			string(r.MatchedBy),
			score(r.Confidence.CompositeScore),
			selectionNote(r),
		})
	}
	table.Header([]string{"Citation", "Status", "Matched By", "Score", "Selection"})
	table.Bulk(rows)
	table.Render()

	s := report.Summary
	fmt.Fprintf(w, "\ntotal: %d", s.Total)
	for _, st := range types.Statuses {
		fmt.Fprintf(w, ", %s: %d", statusLabel(st), s.ByStatus[st])
	}
	fmt.Fprintf(w, ", selection required: %d\n", s.SelectionRequired)
}

func statusLabel(st types.Status) string {
	if c, ok := statusColors[st]; ok {
		return c.Sprint(string(st))
	}
	return string(st)
}

func score(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 3, 64)
}

func selectionNote(r types.CitationResult) string {
	switch {
	case r.SelectionRequired:
		return fmt.Sprintf("%s (%d candidates)", r.SelectionReason, len(r.CandidateMatches))
	case r.SelectedCandidateRank > 0:
		return fmt.Sprintf("rank %d", r.SelectedCandidateRank)
	case r.Error != "":
		return r.Error
	}
	return ""
}
