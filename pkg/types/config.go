// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// ShortlistTrigger controls when the engine runs shortlist retrieval for a
// citation that carries a DOI.
type ShortlistTrigger string

const (
	// TriggerMissingOrConflict runs the shortlist when the DOI is missing,
	// the DOI lookup fails, or the DOI record conflicts on a critical field.
	TriggerMissingOrConflict ShortlistTrigger = "missing_or_conflict"
	TriggerAlways            ShortlistTrigger = "always"
	TriggerNever             ShortlistTrigger = "never"
)

// ResolveConfig holds the decision thresholds for citation resolution.
type ResolveConfig struct {
	// TitleThreshold is the title similarity below which a title mismatch is
	// a conflict rather than a near miss (default 0.85).
	TitleThreshold float64 `json:"title_threshold" yaml:"title_threshold" mapstructure:"title_threshold"`

	// AutoAcceptThreshold is the minimum composite score for automatic
	// acceptance of the top candidate (default 0.88).
	AutoAcceptThreshold float64 `json:"auto_accept_threshold" yaml:"auto_accept_threshold" mapstructure:"auto_accept_threshold"`

	// AmbiguityGapThreshold is the minimum lead of the top candidate over the
	// runner-up for automatic acceptance (default 0.06).
	AmbiguityGapThreshold float64 `json:"ambiguity_gap_threshold" yaml:"ambiguity_gap_threshold" mapstructure:"ambiguity_gap_threshold"`

	// CriticalFields escalate structural contradictions to conflict.
	CriticalFields []FieldName `json:"critical_fields" yaml:"critical_fields" mapstructure:"critical_fields"`

	ShortlistTrigger ShortlistTrigger `json:"shortlist_trigger" yaml:"shortlist_trigger" mapstructure:"shortlist_trigger"`

	// MaxCandidates truncates the ranked list; 0 keeps every candidate.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// Workers bounds concurrent citation resolution (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// EmitCorrectedReference adds a re-rendered reference to each result.
	EmitCorrectedReference bool `json:"emit_corrected_reference" yaml:"emit_corrected_reference" mapstructure:"emit_corrected_reference"`
}

// DefaultCriticalFields are the fields whose contradictions block a match.
var DefaultCriticalFields = []FieldName{FieldTitle, FieldDOI, FieldAuthors, FieldJournal, FieldYear}

// DefaultResolveConfig returns the standard thresholds.
func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{
		TitleThreshold:         0.85,
		AutoAcceptThreshold:    0.88,
		AmbiguityGapThreshold:  0.06,
		CriticalFields:         append([]FieldName(nil), DefaultCriticalFields...),
		ShortlistTrigger:       TriggerMissingOrConflict,
		Workers:                4,
		EmitCorrectedReference: true,
	}
}

// IsCritical reports whether name is configured as a critical field.
func (c ResolveConfig) IsCritical(name FieldName) bool {
	for _, f := range c.CriticalFields {
		if f == name {
			return true
		}
	}
	return false
}

// Validate rejects out-of-range thresholds and unknown names.
func (c ResolveConfig) Validate() error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"title_threshold", c.TitleThreshold},
		{"auto_accept_threshold", c.AutoAcceptThreshold},
		{"ambiguity_gap_threshold", c.AmbiguityGapThreshold},
	}
	for _, t := range thresholds {
		if t.value < 0 || t.value > 1 {
			return fmt.Errorf("%s %.3f outside [0,1]", t.name, t.value)
		}
	}
	for _, f := range c.CriticalFields {
		if _, ok := ParseFieldName(string(f)); !ok {
			return fmt.Errorf("unknown critical field %q", f)
		}
	}
	switch c.ShortlistTrigger {
	case TriggerMissingOrConflict, TriggerAlways, TriggerNever:
	default:
		return fmt.Errorf("unknown shortlist_trigger %q", c.ShortlistTrigger)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates %d is negative", c.MaxCandidates)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d is negative", c.Workers)
	}
	return nil
}

// HTTPConfig holds shared HTTP settings for lookup transports.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citecheck/0.1 (mailto:you@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LookupSource selects the metadata backend.
type LookupSource string

const (
	SourceCrossref LookupSource = "crossref"
	SourceOpenAlex LookupSource = "openalex"
	SourceCatalog  LookupSource = "catalog"
	SourceMulti    LookupSource = "multi"
)

// LookupConfig holds settings for the metadata lookup transports.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Source LookupSource `json:"source" yaml:"source" mapstructure:"source"`

	// Email is sent as the polite-pool contact (Crossref mailto, OpenAlex mailto).
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// Rows is the number of results requested per search query (default 5).
	Rows int `json:"rows" yaml:"rows" mapstructure:"rows"`

	// RateLimit is the sustained request rate per second shared by all
	// requests to one backend (default 5).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// MaxRetries bounds retries on 429 and 5xx responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// DefaultLookupConfig returns the standard transport settings.
func DefaultLookupConfig() LookupConfig {
	return LookupConfig{
		HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: "citecheck/0.1"},
		Source:     SourceCrossref,
		Rows:       5,
		RateLimit:  5,
		MaxRetries: 3,
	}
}

// CatalogConfig locates the offline SQLite works catalog.
type CatalogConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for a citecheck run.
type Config struct {
	Resolve ResolveConfig `json:"resolve" yaml:"resolve" mapstructure:"resolve"`
	Lookup  LookupConfig  `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
