// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps an offline SQLite catalog of known works and serves
// it as a lookup source. Records are matched by normalized DOI, or by token
// filtering over normalized titles and author names.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citecheck/internal/lookup"
	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/internal/rank"
	"github.com/pdiddy/citecheck/pkg/types"
)

const (
	sourceName = "catalog"

	// defaultRows caps Search results when the store is opened with rows <= 0.
	defaultRows = 5

	// maxTerms bounds the LIKE clauses built for one search.
	maxTerms = 12
)

// Store is the SQLite works catalog. It implements lookup.Source.
type Store struct {
	db   *sql.DB
	rows int
}

var _ lookup.Source = (*Store)(nil)

// Open opens or creates the catalog database at path and creates the schema
// if it does not exist. rows limits the records returned per search.
func Open(path string, rows int) (*Store, error) {
	if path == "" {
		return nil, errors.New("catalog path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if rows <= 0 {
		rows = defaultRows
	}

	s := &Store{db: db, rows: rows}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS works (
			key TEXT PRIMARY KEY,
			external_id TEXT,
			doi TEXT,
			title TEXT,
			authors TEXT,
			year TEXT,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_works_doi ON works(doi)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Name returns the backend identifier.
func (s *Store) Name() string { return sourceName }

// Upsert inserts or replaces works keyed by their identity key. Records
// with neither a DOI nor a title are skipped. It returns the number stored.
func (s *Store) Upsert(ctx context.Context, recs []types.CandidateRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO works (key, external_id, doi, title, authors, year, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			external_id=excluded.external_id, doi=excluded.doi, title=excluded.title,
			authors=excluded.authors, year=excluded.year, record=excluded.record`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, rec := range recs {
		doi := normalize.DOI(rec.DOI.Value)
		title := normalize.Title(rec.Title.Value)
		if doi == "" && title == "" {
			continue
		}
		rec.Source = ""
		rec.SourceQueryTypes = nil
		if rec.ExternalID == "" {
			rec.ExternalID = doi
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return n, fmt.Errorf("encoding record: %w", err)
		}
		year := ""
		if y, ok := normalize.Year(rec.Year.Value); ok {
			year = fmt.Sprint(y)
		}
		_, err = stmt.ExecContext(ctx,
			rank.IdentityKey(rec), rec.ExternalID, doi, title,
			authorKeys(rec.Authors.Value), year, string(data),
		)
		if err != nil {
			return n, fmt.Errorf("storing %s: %w", rank.IdentityKey(rec), err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("committing: %w", err)
	}
	return n, nil
}

// Count returns the number of works in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM works`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting works: %w", err)
	}
	return n, nil
}

// LookupDOI returns the work with the given DOI, or lookup.ErrNotFound.
func (s *Store) LookupDOI(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	doi = normalize.DOI(doi)
	if doi == "" {
		return nil, lookup.ErrNotFound
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM works WHERE doi = ? LIMIT 1`, doi).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lookup.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog doi lookup: %w", err)
	}
	rec, err := decode(data)
	if err != nil {
		return nil, err
	}
	rec.Source = sourceName
	rec.SourceQueryTypes = []types.QueryType{types.QueryDOI}
	return &rec, nil
}

// Search returns the works sharing the most significant tokens with the
// query terms for qt, best first. A strategy whose terms are empty returns
// no records.
func (s *Store) Search(ctx context.Context, qt types.QueryType, q lookup.Query) ([]types.CandidateRecord, error) {
	terms := searchTerms(qt, q)
	if len(terms) == 0 {
		return nil, nil
	}

	// Each term contributes 1 to the score when it occurs in the title or
	// author keys; SQLite evaluates LIKE to 0 or 1.
	hits := make([]string, len(terms))
	args := make([]any, 0, len(terms)+1)
	for i, t := range terms {
		hits[i] = `((' ' || title || ' ' || authors || ' ') LIKE ?)`
		args = append(args, "% "+t+" %")
	}
	query := `SELECT key, record, score FROM (
			SELECT key, record, ` + strings.Join(hits, " + ") + ` AS score FROM works
		) WHERE score > 0 ORDER BY score DESC, key LIMIT ?`
	args = append(args, s.rows)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer rows.Close()

	var out []types.CandidateRecord
	for rows.Next() {
		var (
			key, data string
			score     int
		)
		if err := rows.Scan(&key, &data, &score); err != nil {
			return nil, fmt.Errorf("scanning work: %w", err)
		}
		rec, err := decode(data)
		if err != nil {
			return nil, err
		}
		rec.Source = sourceName
		rec.SourceQueryTypes = []types.QueryType{qt}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// searchTerms lists the distinct normalized tokens a strategy matches on.
// Tokens hold only letters and digits, so they carry no LIKE wildcards.
func searchTerms(qt types.QueryType, q lookup.Query) []string {
	text := q.Terms(qt)
	if text == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, tok := range normalize.SignificantTokens(text) {
		if len(tok) < 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) == maxTerms {
			break
		}
	}
	return out
}

// authorKeys returns the space-joined normalized family names.
func authorKeys(authors []string) string {
	names, _ := normalize.Names(authors)
	keys := make([]string, 0, len(names))
	for _, n := range names {
		if f := normalize.Title(n.Family); f != "" {
			keys = append(keys, f)
		}
	}
	return strings.Join(keys, " ")
}

func decode(data string) (types.CandidateRecord, error) {
	var rec types.CandidateRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return rec, fmt.Errorf("decoding catalog record: %w", err)
	}
	return rec, nil
}
