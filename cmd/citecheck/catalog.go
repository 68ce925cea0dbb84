// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citecheck/internal/catalog"
	"github.com/pdiddy/citecheck/internal/lookup"
	"github.com/pdiddy/citecheck/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the offline works catalog (import, lookup)",
	Long: `Catalog manages a local SQLite database of known works. Set
lookup.source to "catalog" (or "multi") to resolve citations against it.`,
}

// --- import subcommand ---

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import works from JSON candidate records or CSL-YAML",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	failed := 0
	for _, path := range args {
		n, err := store.ImportFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "imported %s (%d works)\n", path, n)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\ncatalog: %d works\n", total)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", failed)
	}
	return nil
}

// --- lookup subcommand ---

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up works by DOI or title",
	RunE:  runCatalogLookup,
}

func runCatalogLookup(cmd *cobra.Command, args []string) error {
	doi, _ := cmd.Flags().GetString("doi")
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	if doi == "" && title == "" {
		return fmt.Errorf("--doi or --title required")
	}

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var recs []types.CandidateRecord
	if doi != "" {
		rec, err := store.LookupDOI(ctx, doi)
		if err != nil && !errors.Is(err, lookup.ErrNotFound) {
			return err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	} else {
		qt := types.QueryTitle
		if author != "" {
			qt = types.QueryAuthorTitle
		}
		recs, err = store.Search(ctx, qt, lookup.Query{Title: title, Author: author})
		if err != nil {
			return err
		}
	}

	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "No works found.")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = viper.GetString("catalog.path")
	}
	rows, _ := cmd.Flags().GetInt("max-results")
	return catalog.Open(path, rows)
}

func init() {
	catalogCmd.PersistentFlags().String("catalog", "", "catalog database path (default: catalog.path)")

	catalogLookupCmd.Flags().String("doi", "", "DOI to look up")
	catalogLookupCmd.Flags().String("title", "", "title to search for")
	catalogLookupCmd.Flags().String("author", "", "first author family name to narrow a title search")
	catalogLookupCmd.Flags().Int("max-results", 5, "maximum number of works returned by a title search")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
	rootCmd.AddCommand(catalogCmd)
}
