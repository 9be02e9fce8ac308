// Package storage maintains the SQLite query cache of a library. The cache
// is derived data: it is rebuilt wholesale from papers.jsonl and never
// written back.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectPaperFields = `id, title, year, venue, overall,
	tags_json, authors_json,
	note_path, pdf, pdf_sha256,
	keywords, summary, comment,
	doi, url, bibtex_key`

// OpenDB opens or creates the cache at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			year TEXT NOT NULL,
			venue TEXT,
			overall REAL NOT NULL,
			tags_json TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			note_path TEXT,
			pdf TEXT,
			pdf_sha256 TEXT,
			keywords TEXT,
			summary TEXT,
			comment TEXT,
			doi TEXT,
			url TEXT,
			bibtex_key TEXT
		);

		CREATE TABLE IF NOT EXISTS paper_tags (
			paper_id TEXT NOT NULL,
			tag TEXT NOT NULL COLLATE NOCASE
		);
		CREATE INDEX IF NOT EXISTS idx_paper_tags_tag ON paper_tags(tag);

		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			id UNINDEXED,
			title,
			authors_text,
			tags_text,
			keywords,
			summary
		);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the cache and refills it from a papers.jsonl
// file. Lines the index loader skips are skipped here too.
func (d *DB) RebuildFromJSONL(jsonlPath string, opts ...index.Option) (int, error) {
	idx := index.NewJSONLIndex(jsonlPath, opts...)
	if err := idx.Load(); err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(idx.Entries())
}

// Rebuild replaces the cache contents with entries in one transaction.
func (d *DB) Rebuild(entries []paper.Entry) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"papers", "paper_tags", "papers_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	papersStmt, err := tx.Prepare(`
		INSERT INTO papers (` + selectPaperFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	tagStmt, err := tx.Prepare(`INSERT INTO paper_tags (paper_id, tag) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing tags insert: %w", err)
	}
	defer tagStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO papers_fts (id, title, authors_text, tags_text, keywords, summary)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, e := range entries {
		e = e.Normalize()

		tagsJSON, err := json.Marshal(e.Tags)
		if err != nil {
			return 0, fmt.Errorf("marshaling tags for %s: %w", e.ID, err)
		}
		authorsJSON, err := json.Marshal(e.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", e.ID, err)
		}

		_, err = papersStmt.Exec(
			e.ID, e.Title, e.Year.String(), e.Venue, e.Scores.Overall,
			string(tagsJSON), string(authorsJSON),
			e.NotePath, e.PDF, e.PDFSHA256,
			e.Keywords, e.Summary, e.Comment,
			e.DOI, e.URL, e.BibTeXKey,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", e.ID, err)
		}

		for _, tag := range e.Tags {
			if _, err := tagStmt.Exec(e.ID, tag); err != nil {
				return 0, fmt.Errorf("inserting tag for %s: %w", e.ID, err)
			}
		}

		_, err = ftsStmt.Exec(e.ID, e.Title,
			strings.Join(e.Authors, ", "), strings.Join(e.Tags, " "),
			e.Keywords, e.Summary)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(entries), nil
}

// GetByID returns the cached entry, or nil when absent.
func (d *DB) GetByID(id string) (*paper.Entry, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)
	return scanEntry(row)
}

// Search runs a full-text query over title, authors, tags, keywords and
// summary, best matches first.
func (d *DB) Search(query string, limit int) ([]paper.Entry, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+prefixed("p.", selectPaperFields)+`
		FROM papers_fts JOIN papers p ON p.id = papers_fts.id
		WHERE papers_fts MATCH ?
		ORDER BY papers_fts.rank, p.id
		LIMIT ?`, ftsQuery, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Tag   string // Case-insensitive exact tag
	Year  string // Exact year text, e.g. "2023" or "unknown"
	Limit int    // 0 = no limit
}

// List returns cached entries matching f, ordered by identifier.
func (d *DB) List(f ListFilter) ([]paper.Entry, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers WHERE 1=1`
	var args []interface{}

	if f.Tag != "" {
		query += ` AND id IN (SELECT paper_id FROM paper_tags WHERE tag = ?)`
		args = append(args, f.Tag)
	}
	if f.Year != "" {
		query += ` AND year = ?`
		args = append(args, f.Year)
	}

	query += ` ORDER BY id LIMIT ?`
	args = append(args, sqlLimit(f.Limit))

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of cached entries.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}

func prefixed(prefix, fields string) string {
	parts := strings.Split(fields, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*paper.Entry, error) {
	var e paper.Entry
	var year, tagsJSON, authorsJSON string
	var venue, notePath, pdfPath, sha, keywords, summary, comment, doi, url, key sql.NullString

	err := s.Scan(
		&e.ID, &e.Title, &year, &venue, &e.Scores.Overall,
		&tagsJSON, &authorsJSON,
		&notePath, &pdfPath, &sha,
		&keywords, &summary, &comment,
		&doi, &url, &key,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	e.Year = paper.Year(year)
	e.Venue = venue.String
	e.NotePath = notePath.String
	e.PDF = pdfPath.String
	e.PDFSHA256 = sha.String
	e.Keywords = keywords.String
	e.Summary = summary.String
	e.Comment = comment.String
	e.DOI = doi.String
	e.URL = url.String
	e.BibTeXKey = key.String

	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags JSON for %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(authorsJSON), &e.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", e.ID, err)
	}

	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]paper.Entry, error) {
	var entries []paper.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, rows.Err()
}

// prepareFTSQuery quotes queries containing FTS5 syntax characters so
// they match as a phrase instead of failing to parse.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,;'") {
		return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
	}
	return query
}
