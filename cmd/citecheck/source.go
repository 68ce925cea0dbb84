// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/pdiddy/citecheck/internal/catalog"
	"github.com/pdiddy/citecheck/internal/lookup"
	"github.com/pdiddy/citecheck/pkg/types"
)

// buildSource returns the lookup backend named by cfg.Lookup.Source and a
// cleanup function for any catalog it opened.
func buildSource(cfg types.Config) (lookup.Source, func(), error) {
	lc := cfg.Lookup
	noop := func() {}

	withEmail := func(source string) types.LookupConfig {
		c := lc
		if c.Email == "" {
			c.Email = loadedSecrets.ContactEmail(source)
		}
		return c
	}

	switch lc.Source {
	case types.SourceCrossref, "":
		return lookup.NewCrossref(withEmail("crossref")), noop, nil
	case types.SourceOpenAlex:
		return lookup.NewOpenAlex(withEmail("openalex")), noop, nil
	case types.SourceCatalog:
		store, err := catalog.Open(cfg.Catalog.Path, lc.Rows)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	case types.SourceMulti:
		sources := []lookup.Source{
			lookup.NewCrossref(withEmail("crossref")),
			lookup.NewOpenAlex(withEmail("openalex")),
		}
		cleanup := noop
		if cfg.Catalog.Path != "" {
			store, err := catalog.Open(cfg.Catalog.Path, lc.Rows)
			if err != nil {
				return nil, noop, err
			}
			sources = append([]lookup.Source{store}, sources...)
			cleanup = func() { store.Close() }
		}
		return &lookup.Multi{Sources: sources}, cleanup, nil
	default:
		return nil, noop, fmt.Errorf("unknown lookup source %q: want crossref, openalex, catalog, or multi", lc.Source)
	}
}
