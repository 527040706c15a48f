package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/paper"
)

// Tx is an explicit mutation scope over the store. Every Tx must end in
// exactly one Commit or Rollback; Rollback after a successful Commit is a
// no-op, so `defer tx.Rollback()` is safe on all exit paths.
type Tx struct {
	tx   *sql.Tx
	done bool
}

// Begin starts a mutation transaction.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit applies the transaction. A rejected commit is rolled back and
// reported as ErrTransactionFailed.
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		t.tx.Rollback()
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}

// Rollback discards the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}

// UpsertPaper inserts a paper node. An existing paper with the same
// content hash is left untouched; papers are never mutated after creation.
func (t *Tx) UpsertPaper(p paper.Paper) error {
	blob, err := encodeVector(p.Vector)
	if err != nil {
		return fmt.Errorf("encoding embedding for %s: %w", p.Hash, err)
	}

	_, err = t.tx.Exec(`
		INSERT INTO papers (hash, title, title_key, abstract, doi, year, path, embedding, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, p.Hash, p.Title, p.TitleKey, p.Abstract, p.DOI, p.Year, p.Path, blob,
		p.IngestedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.Hash, err)
	}
	return nil
}

// UpsertNode creates a node if absent. The label of the first appearance
// wins; later raw spellings that normalize to the same key reuse the node.
// Under concurrent ingests the primary key makes this first-committer-wins.
func (t *Tx) UpsertNode(n paper.Node) error {
	_, err := t.tx.Exec(`
		INSERT INTO nodes (kind, key, label)
		VALUES (?, ?, ?)
		ON CONFLICT(kind, key) DO NOTHING
	`, n.Kind, n.Key, n.Label)
	if err != nil {
		return fmt.Errorf("upserting node %s/%s: %w", n.Kind, n.Key, err)
	}
	return nil
}

// UpsertEdge creates or refreshes a typed edge. Re-ingesting a paper never
// duplicates edges; only the weight is updated.
func (t *Tx) UpsertEdge(e paper.Edge) error {
	_, err := t.tx.Exec(`
		INSERT INTO edges (kind, paper_hash, node_kind, node_key, weight)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, paper_hash, node_kind, node_key) DO UPDATE SET weight = excluded.weight
	`, e.Kind, e.PaperHash, e.NodeKind, e.NodeKey, e.Weight)
	if err != nil {
		return fmt.Errorf("upserting edge %s %s->%s: %w", e.Kind, e.PaperHash, e.NodeKey, err)
	}
	return nil
}

// SetEmbeddingConfig records the store's embedding space if not already
// recorded. Callers validate compatibility before writing.
func (t *Tx) SetEmbeddingConfig(cfg embedding.Config) error {
	_, err := t.tx.Exec(`
		INSERT INTO embedding_config (id, model, dimensions)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, cfg.Model, cfg.Dimensions)
	if err != nil {
		return fmt.Errorf("recording embedding config: %w", err)
	}
	return nil
}
