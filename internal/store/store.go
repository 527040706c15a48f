// Package store persists the paper property graph in SQLite.
//
// The store owns all persisted entities. Callers propose mutations through
// an explicit transaction scope (Begin / Commit / Rollback); reads go
// through the Store directly. Node identity is (kind, key) and edge
// identity is (kind, paper, node), so repeated upserts are no-ops and the
// graph stays free of duplicates by construction.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrTransactionFailed indicates the underlying store rejected a commit.
// The transaction is rolled back; retrying is the caller's decision.
var ErrTransactionFailed = errors.New("store transaction failed")

// Store wraps a SQLite database holding the paper graph.
type Store struct {
	db *sql.DB
}

// Open opens or creates a graph store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- One row per ingested document, keyed by content hash.
		CREATE TABLE IF NOT EXISTS papers (
			hash TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			title_key TEXT NOT NULL,
			abstract TEXT,
			doi TEXT,
			year INTEGER,
			path TEXT NOT NULL,
			embedding BLOB NOT NULL,
			ingested_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_papers_title_key ON papers(title_key);

		-- Author, topic, and keyword nodes, keyed by normalization key.
		CREATE TABLE IF NOT EXISTS nodes (
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (kind, key)
		);

		-- Typed paper->node edges. The primary key enforces at most one
		-- edge of a given kind between a given pair.
		CREATE TABLE IF NOT EXISTS edges (
			kind TEXT NOT NULL,
			paper_hash TEXT NOT NULL,
			node_kind TEXT NOT NULL,
			node_key TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (kind, paper_hash, node_kind, node_key)
		);

		CREATE INDEX IF NOT EXISTS idx_edges_paper ON edges(paper_hash);
		CREATE INDEX IF NOT EXISTS idx_edges_node ON edges(node_kind, node_key);

		-- Single-row record of the embedding space this store was built
		-- with. Set on first ingest, checked on every ingest and query.
		CREATE TABLE IF NOT EXISTS embedding_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			model TEXT NOT NULL,
			dimensions INTEGER NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}
