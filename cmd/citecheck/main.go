// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citecheck CLI. citecheck validates
// bibliographic references against scholarly metadata services and reports
// machine-actionable corrections.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citecheck/internal/secrets"
	"github.com/pdiddy/citecheck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds per-key credential files.
const secretsDir = ".secrets/"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is configured in PersistentPreRunE from log.format and --verbose.
	logger = slog.New(slog.DiscardHandler)
)

// rootCmd is the base command for the citecheck CLI.
var rootCmd = &cobra.Command{
	Use:   "citecheck",
	Short: "Validate and correct bibliographic references",
	Long: `citecheck checks a citation list against Crossref, OpenAlex, or a local
works catalog. For each citation it finds the authoritative record, assesses
every field, and emits a correction patch. Ambiguous matches are reported for
a second pass driven by a selection map.

Typical workflow:
  citecheck check refs.bib --output pass1.json
  citecheck select pass1.json --output selection.json
  citecheck check refs.bib --selection-map selection.json --output pass2.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(viper.GetString("log.format"), verbose)
		slog.SetDefault(logger)

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citecheck.yaml or ~/.config/citecheck/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citecheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citecheck"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("CITECHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides apply
// even when no config file is present.
func setDefaults() {
	r := types.DefaultResolveConfig()
	viper.SetDefault("resolve.title_threshold", r.TitleThreshold)
	viper.SetDefault("resolve.auto_accept_threshold", r.AutoAcceptThreshold)
	viper.SetDefault("resolve.ambiguity_gap_threshold", r.AmbiguityGapThreshold)
	viper.SetDefault("resolve.critical_fields", fieldNames(r.CriticalFields))
	viper.SetDefault("resolve.shortlist_trigger", string(r.ShortlistTrigger))
	viper.SetDefault("resolve.max_candidates", r.MaxCandidates)
	viper.SetDefault("resolve.workers", r.Workers)
	viper.SetDefault("output.emit_corrected_reference", r.EmitCorrectedReference)

	l := types.DefaultLookupConfig()
	viper.SetDefault("lookup.source", string(l.Source))
	viper.SetDefault("lookup.email", "")
	viper.SetDefault("lookup.rows", l.Rows)
	viper.SetDefault("lookup.timeout", l.Timeout)
	viper.SetDefault("lookup.user_agent", l.UserAgent)
	viper.SetDefault("lookup.rate_limit", l.RateLimit)
	viper.SetDefault("lookup.max_retries", l.MaxRetries)

	viper.SetDefault("catalog.path", "catalog/works.db")
	viper.SetDefault("log.format", "text")
}

// loadConfig decodes the merged configuration and validates it.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Resolve.EmitCorrectedReference = viper.GetBool("output.emit_corrected_reference")
	if err := cfg.Resolve.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fieldNames(fields []types.FieldName) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

// newLogger returns a stderr logger in text or JSON form.
func newLogger(format string, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
