// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists grouped paper documents in a SQLite index so that
// several query logs can be merged and read back in a stable order.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-artifacts/pkg/types"
)

// DefaultDBPath is used when StoreConfig.DBPath is empty.
const DefaultDBPath = "paper-artifacts.db"

// Store manages the SQLite index.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database and its schema.
func Open(ctx context.Context, cfg types.StoreConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			papers INTEGER NOT NULL,
			queries INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			import_id TEXT NOT NULL REFERENCES imports(id)
		)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			text TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (paper_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS queries (
			paper_id TEXT NOT NULL,
			artifact_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			row_index INTEGER NOT NULL,
			fields TEXT NOT NULL,
			PRIMARY KEY (paper_id, artifact_id, position),
			FOREIGN KEY (paper_id, artifact_id) REFERENCES artifacts(paper_id, id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_position ON papers(position)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from one import.
type ImportSummary struct {
	ID       string
	Inserted int
	Replaced int
	Queries  int
}

// Import stores papers in one transaction. A paper already in the index is
// replaced wholesale and keeps its original position; new papers are
// appended after the existing ones.
func (s *Store) Import(ctx context.Context, source string, papers []types.Paper) (ImportSummary, error) {
	summary := ImportSummary{ID: uuid.NewString()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	queryCount := 0
	for _, p := range papers {
		queryCount += p.QueryCount()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, imported_at, papers, queries) VALUES (?, ?, ?, ?, ?)`,
		summary.ID, source, time.Now().UTC().Format(time.RFC3339Nano), len(papers), queryCount,
	)
	if err != nil {
		return summary, fmt.Errorf("recording import: %w", err)
	}

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM papers`).Scan(&next); err != nil {
		return summary, fmt.Errorf("reading paper position: %w", err)
	}

	insertArtifact, err := tx.PrepareContext(ctx,
		`INSERT INTO artifacts (paper_id, id, text, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing artifact insert: %w", err)
	}
	defer insertArtifact.Close()

	insertQuery, err := tx.PrepareContext(ctx,
		`INSERT INTO queries (paper_id, artifact_id, position, row_index, fields) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing query insert: %w", err)
	}
	defer insertQuery.Close()

	for _, p := range papers {
		var position int
		err := tx.QueryRowContext(ctx, `SELECT position FROM papers WHERE id = ?`, p.ID).Scan(&position)
		switch {
		case err == sql.ErrNoRows:
			position = next
			next++
			summary.Inserted++
		case err != nil:
			return summary, fmt.Errorf("looking up paper %s: %w", p.ID, err)
		default:
			if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, p.ID); err != nil {
				return summary, fmt.Errorf("deleting paper %s: %w", p.ID, err)
			}
			summary.Replaced++
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO papers (id, title, position, import_id) VALUES (?, ?, ?, ?)`,
			p.ID, p.Title, position, summary.ID)
		if err != nil {
			return summary, fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}

		for i, a := range p.Artifacts {
			if _, err := insertArtifact.ExecContext(ctx, p.ID, a.ID, a.Text, i); err != nil {
				return summary, fmt.Errorf("inserting artifact %s/%s: %w", p.ID, a.ID, err)
			}
			for j, q := range a.Queries {
				fields, err := json.Marshal(q)
				if err != nil {
					return summary, fmt.Errorf("encoding query %s/%s#%d: %w", p.ID, a.ID, j, err)
				}
				if _, err := insertQuery.ExecContext(ctx, p.ID, a.ID, j, q.Index, string(fields)); err != nil {
					return summary, fmt.Errorf("inserting query %s/%s#%d: %w", p.ID, a.ID, j, err)
				}
				summary.Queries++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// Papers reads the whole index back as an ordered document.
func (s *Store) Papers(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, a.id, a.text, q.row_index, q.fields
		FROM papers p
		JOIN artifacts a ON a.paper_id = p.id
		JOIN queries q ON q.paper_id = a.paper_id AND q.artifact_id = a.id
		ORDER BY p.position, a.position, q.position`)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	papers := []types.Paper{}
	for rows.Next() {
		var (
			paperID, title, artifactID, text, fields string
			rowIndex                                 int
		)
		if err := rows.Scan(&paperID, &title, &artifactID, &text, &rowIndex, &fields); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}

		if n := len(papers); n == 0 || papers[n-1].ID != paperID {
			papers = append(papers, types.Paper{ID: paperID, Title: title})
		}
		p := &papers[len(papers)-1]
		if n := len(p.Artifacts); n == 0 || p.Artifacts[n-1].ID != artifactID {
			p.Artifacts = append(p.Artifacts, types.Artifact{ID: artifactID, Text: text})
		}
		a := &p.Artifacts[len(p.Artifacts)-1]

		var q types.Row
		if err := json.Unmarshal([]byte(fields), &q); err != nil {
			return nil, fmt.Errorf("decoding query of %s/%s: %w", paperID, artifactID, err)
		}
		q.Index = rowIndex
		a.Queries = append(a.Queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index: %w", err)
	}
	return papers, nil
}

// Import is one recorded import run.
type Import struct {
	ID         string
	Source     string
	ImportedAt time.Time
	Papers     int
	Queries    int
}

// Imports lists recorded imports, oldest first.
func (s *Store) Imports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, imported_at, papers, queries FROM imports ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var (
			imp Import
			ts  string
		)
		if err := rows.Scan(&imp.ID, &imp.Source, &ts, &imp.Papers, &imp.Queries); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing import %s timestamp: %w", imp.ID, err)
		}
		imp.ImportedAt = at
		out = append(out, imp)
	}
	return out, rows.Err()
}
