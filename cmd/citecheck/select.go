// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citecheck/internal/selection"
)

var selectCmd = &cobra.Command{
	Use:   "select <results>",
	Short: "Build a selection map from a first-pass report",
	Long: `Select reads a run report (or a bare JSON array of results) and writes a
selection map choosing the recommended candidate for every citation marked
selection_required. Edit the map to pick other ranks before the second pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringP("output", "o", "", "write the selection map to this file instead of stdout")

	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	results, err := selection.ReadResults(args[0])
	if err != nil {
		return err
	}
	m, err := selection.Build(results)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath != "" {
		if err := selection.Write(outPath, m); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d selection(s) to %s\n", len(m), outPath)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
