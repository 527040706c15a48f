package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/paper"
)

const selectPaperFields = `hash, title, title_key, abstract, doi, year, path, embedding, ingested_at`

// PaperByHash retrieves a paper by content hash. Returns nil if absent.
func (s *Store) PaperByHash(hash string) (*paper.Paper, error) {
	row := s.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE hash = ?`, hash)
	return scanPaper(row)
}

// PapersByTitleKey returns papers whose normalized title equals the key
// exactly. Used for naming-collision detection during ingest.
func (s *Store) PapersByTitleKey(titleKey string) ([]paper.Paper, error) {
	rows, err := s.db.Query(`
		SELECT `+selectPaperFields+` FROM papers
		WHERE title_key = ?
		ORDER BY title_key, hash
	`, titleKey)
	if err != nil {
		return nil, fmt.Errorf("querying papers by title key: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// PapersByTitleSubstring returns papers whose normalized title contains the
// key as a substring, ordered by title then hash for determinism.
func (s *Store) PapersByTitleSubstring(titleKey string) ([]paper.Paper, error) {
	rows, err := s.db.Query(`
		SELECT `+selectPaperFields+` FROM papers
		WHERE title_key LIKE ? ESCAPE '\'
		ORDER BY title_key, hash
	`, likePattern(titleKey))
	if err != nil {
		return nil, fmt.Errorf("querying papers by title: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// FindNode retrieves a node by kind and exact normalization key. Returns
// nil if absent.
func (s *Store) FindNode(kind paper.Kind, key string) (*paper.Node, error) {
	var n paper.Node
	err := s.db.QueryRow(`
		SELECT kind, key, label FROM nodes WHERE kind = ? AND key = ?
	`, kind, key).Scan(&n.Kind, &n.Key, &n.Label)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("finding node %s/%s: %w", kind, key, err)
	}
	return &n, nil
}

// FindNodesBySubstring returns nodes of a kind whose normalization key
// contains the term as a substring, ordered by key.
func (s *Store) FindNodesBySubstring(kind paper.Kind, term string) ([]paper.Node, error) {
	rows, err := s.db.Query(`
		SELECT kind, key, label FROM nodes
		WHERE kind = ? AND key LIKE ? ESCAPE '\'
		ORDER BY key
	`, kind, likePattern(term))
	if err != nil {
		return nil, fmt.Errorf("finding nodes by substring: %w", err)
	}
	defer rows.Close()

	var nodes []paper.Node
	for rows.Next() {
		var n paper.Node
		if err := rows.Scan(&n.Kind, &n.Key, &n.Label); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// PapersForNode returns all papers connected to the given node via the
// edge kind matching the node's kind, ordered by title then hash.
func (s *Store) PapersForNode(kind paper.Kind, key string) ([]paper.Paper, error) {
	rows, err := s.db.Query(`
		SELECT `+qualifiedPaperFields("p")+`
		FROM papers p
		JOIN edges e ON e.paper_hash = p.hash
		WHERE e.kind = ? AND e.node_kind = ? AND e.node_key = ?
		ORDER BY p.title_key, p.hash
	`, paper.EdgeKindFor(kind), kind, key)
	if err != nil {
		return nil, fmt.Errorf("querying papers for node %s/%s: %w", kind, key, err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// AllPapers returns every stored paper with its embedding vector, ordered
// by title then hash.
func (s *Store) AllPapers() ([]paper.Paper, error) {
	rows, err := s.db.Query(`
		SELECT ` + selectPaperFields + ` FROM papers ORDER BY title_key, hash
	`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// CountPapers returns the total number of stored papers.
func (s *Store) CountPapers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// Neighbor is a node adjacent to a paper together with its connecting edge.
type Neighbor struct {
	Node paper.Node
	Edge paper.Edge
}

// NeighborsOf returns every node directly connected to the paper, ordered
// by node kind then key so projections are deterministic.
func (s *Store) NeighborsOf(paperHash string) ([]Neighbor, error) {
	rows, err := s.db.Query(`
		SELECT n.kind, n.key, n.label, e.kind, e.weight
		FROM edges e
		JOIN nodes n ON n.kind = e.node_kind AND n.key = e.node_key
		WHERE e.paper_hash = ?
		ORDER BY n.kind, n.key
	`, paperHash)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors of %s: %w", paperHash, err)
	}
	defer rows.Close()

	var neighbors []Neighbor
	for rows.Next() {
		var nb Neighbor
		if err := rows.Scan(&nb.Node.Kind, &nb.Node.Key, &nb.Node.Label, &nb.Edge.Kind, &nb.Edge.Weight); err != nil {
			return nil, err
		}
		nb.Edge.PaperHash = paperHash
		nb.Edge.NodeKind = nb.Node.Kind
		nb.Edge.NodeKey = nb.Node.Key
		neighbors = append(neighbors, nb)
	}
	return neighbors, rows.Err()
}

// EmbeddingConfig returns the store's recorded embedding configuration.
// A zero Config means no ingest has recorded one yet.
func (s *Store) EmbeddingConfig() (embedding.Config, error) {
	var cfg embedding.Config
	err := s.db.QueryRow(`SELECT model, dimensions FROM embedding_config WHERE id = 1`).
		Scan(&cfg.Model, &cfg.Dimensions)
	if err != nil {
		if err == sql.ErrNoRows {
			return embedding.Config{}, nil
		}
		return embedding.Config{}, fmt.Errorf("reading embedding config: %w", err)
	}
	return cfg, nil
}

// qualifiedPaperFields prefixes the paper field list with a table alias.
func qualifiedPaperFields(alias string) string {
	fields := strings.Split(selectPaperFields, ", ")
	for i, f := range fields {
		fields[i] = alias + "." + f
	}
	return strings.Join(fields, ", ")
}

// likePattern wraps a term for substring LIKE matching, escaping the LIKE
// metacharacters in the term itself.
func likePattern(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, "%", `\%`)
	term = strings.ReplaceAll(term, "_", `\_`)
	return "%" + term + "%"
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(s scanner) (*paper.Paper, error) {
	var p paper.Paper
	var abstract, doi sql.NullString
	var year sql.NullInt64
	var blob []byte
	var ingestedAt string

	err := s.Scan(&p.Hash, &p.Title, &p.TitleKey, &abstract, &doi, &year, &p.Path, &blob, &ingestedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.Abstract = abstract.String
	p.DOI = doi.String
	p.Year = int(year.Int64)

	p.Vector, err = decodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding embedding for %s: %w", p.Hash, err)
	}

	if t, err := time.Parse(time.RFC3339, ingestedAt); err == nil {
		p.IngestedAt = t
	}

	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, rows.Err()
}
