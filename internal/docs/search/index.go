// Package search implements the search plugin: a SQLite index of rendered
// page text built during the site build and queried by `riemax-docs
// search`. SQLite (pure-Go driver) keeps the index a single file inside
// the site output, queryable without the toolchain.
package search

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// IndexFileName is the index location relative to the site directory.
const IndexFileName = "search.db"

// Index is an open search index.
type Index struct {
	db        *sql.DB
	minLength int
}

// Document is one indexable unit: a heading-delimited section of a page.
type Document struct {
	PagePath string // page URL path, e.g. "examples/geodesics/"
	Title    string // page title
	Section  string // heading text, empty for the page lead
	Anchor   string // heading anchor, empty for the page lead
	Body     string // plain text
}

// Result is one query hit.
type Result struct {
	PagePath string
	Title    string
	Section  string
	Anchor   string
	Snippet  string
	Score    int
}

// Open opens (creating if necessary) the index at path. minLength is the
// shortest query term that will be matched; shorter terms are dropped.
func Open(path string, minLength int) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize search schema: %w", err)
	}
	if minLength <= 0 {
		minLength = 3
	}
	return &Index{db: db, minLength: minLength}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// ReplaceAll indexes a full build transactionally: the new documents are
// inserted under a fresh build id and the previous build's rows are
// deleted in the same transaction, so readers never observe a partial
// index.
func (ix *Index) ReplaceAll(docs []Document) (string, error) {
	buildID := uuid.NewString()

	tx, err := ix.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin index build: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.Prepare(`INSERT INTO documents (build_id, page_path, title, section, anchor, body) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare document insert: %w", err)
	}
	defer stmt.Close()

	pages := make(map[string]bool)
	for _, d := range docs {
		if _, err := stmt.Exec(buildID, d.PagePath, d.Title, d.Section, d.Anchor, normalize(d.Body)); err != nil {
			return "", fmt.Errorf("index document %s: %w", d.PagePath, err)
		}
		pages[d.PagePath] = true
	}

	if _, err := tx.Exec(`INSERT INTO builds (build_id, created_at, page_count) VALUES (?, ?, ?)`,
		buildID, time.Now().UTC().Format(time.RFC3339), len(pages)); err != nil {
		return "", fmt.Errorf("record build: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE build_id != ?`, buildID); err != nil {
		return "", fmt.Errorf("drop stale documents: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM builds WHERE build_id != ?`, buildID); err != nil {
		return "", fmt.Errorf("drop stale builds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit index build: %w", err)
	}
	return buildID, nil
}

// Query matches terms against title, section heading, and body, weighting
// title > heading > body. Terms shorter than min_length are dropped; a
// query reduced to nothing returns no results.
func (ix *Index) Query(terms []string, limit int) ([]Result, error) {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if len([]rune(t)) >= ix.minLength {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}

	// Candidate rows: any term matches any field. Scoring happens in Go,
	// keeping the SQL independent of term count.
	var conds []string
	var args []interface{}
	for _, t := range kept {
		pattern := "%" + t + "%"
		conds = append(conds, "(lower(title) LIKE ? OR lower(section) LIKE ? OR lower(body) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	rows, err := ix.db.Query(
		`SELECT page_path, title, section, anchor, body FROM documents WHERE `+strings.Join(conds, " OR "), args...)
	if err != nil {
		return nil, fmt.Errorf("query search index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(&r.PagePath, &r.Title, &r.Section, &r.Anchor, &body); err != nil {
			return nil, err
		}
		r.Score = score(r.Title, r.Section, body, kept)
		if r.Score == 0 {
			continue
		}
		r.Snippet = snippet(body, kept)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// LastBuild returns the most recent build id and its page count.
func (ix *Index) LastBuild() (buildID string, pageCount int, err error) {
	row := ix.db.QueryRow(`SELECT build_id, page_count FROM builds ORDER BY created_at DESC LIMIT 1`)
	if err := row.Scan(&buildID, &pageCount); err != nil {
		return "", 0, err
	}
	return buildID, pageCount, nil
}

func score(title, section, body string, terms []string) int {
	title, section, body = strings.ToLower(title), strings.ToLower(section), strings.ToLower(body)
	total := 0
	for _, t := range terms {
		if strings.Contains(title, t) {
			total += 3
		}
		if strings.Contains(section, t) {
			total += 2
		}
		total += strings.Count(body, t)
	}
	return total
}

// snippet returns a short context window around the first term hit.
func snippet(body string, terms []string) string {
	lower := strings.ToLower(body)
	pos := -1
	for _, t := range terms {
		if i := strings.Index(lower, t); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	if pos < 0 {
		pos = 0
	}

	const window = 80
	start := pos - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(body) {
		end = len(body)
	}
	// Snap both cuts to rune boundaries so multibyte text never splits.
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	snip := strings.TrimSpace(body[start:end])
	if start > 0 {
		snip = "…" + snip
	}
	if end < len(body) {
		snip += "…"
	}
	return snip
}

// normalize collapses whitespace so snippets stay single-line.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
