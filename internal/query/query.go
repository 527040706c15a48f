// Package query answers exact-match and semantic-similarity questions
// over the paper graph.
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/identity"
	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
)

// ErrInvalidQuery indicates an empty or unusable query term.
var ErrInvalidQuery = errors.New("invalid query")

const (
	// DefaultLimit caps semantic search results when no limit is given.
	DefaultLimit = 10
	// DefaultThreshold is the minimum cosine similarity for a semantic match.
	DefaultThreshold = 0.2
)

// Field names an exact-search dimension.
type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
	FieldTopic  Field = "topic"
)

// ParseField validates a user-supplied field name.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTitle:
		return FieldTitle, nil
	case FieldAuthor:
		return FieldAuthor, nil
	case FieldTopic:
		return FieldTopic, nil
	default:
		return "", fmt.Errorf("%w: unknown field %q (want title, author, or topic)", ErrInvalidQuery, s)
	}
}

// Match is one semantic search hit.
type Match struct {
	Paper      paper.Paper `json:"paper"`
	Similarity float64     `json:"similarity"`
}

// Engine runs searches against a store, using an embedding provider for
// semantic queries. The provider may be nil for exact-only use.
type Engine struct {
	store    *store.Store
	embedder embedding.Provider
}

// NewEngine creates a query engine.
func NewEngine(st *store.Store, emb embedding.Provider) *Engine {
	return &Engine{store: st, embedder: emb}
}

// Exact finds papers whose normalized field value contains the term as a
// substring. The term goes through the same normalization as ingested
// values, so "Fuller" matches the author stored as "robinson fuller".
// Results are deduplicated and ordered by normalized title then hash.
func (e *Engine) Exact(field Field, term string) ([]paper.Paper, error) {
	key := identity.Normalize(term)
	if key == "" {
		return nil, fmt.Errorf("%w: empty search term", ErrInvalidQuery)
	}

	switch field {
	case FieldTitle:
		return e.store.PapersByTitleSubstring(key)
	case FieldAuthor:
		return e.papersForNodeTerm(paper.KindAuthor, key)
	case FieldTopic:
		return e.papersForNodeTerm(paper.KindTopic, key)
	default:
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, field)
	}
}

// papersForNodeTerm collects papers connected to any node of the kind
// whose key contains the term. A paper linked to several matching nodes
// appears once.
func (e *Engine) papersForNodeTerm(kind paper.Kind, term string) ([]paper.Paper, error) {
	nodes, err := e.store.FindNodesBySubstring(kind, term)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var papers []paper.Paper
	for _, node := range nodes {
		connected, err := e.store.PapersForNode(kind, node.Key)
		if err != nil {
			return nil, err
		}
		for _, p := range connected {
			if seen[p.Hash] {
				continue
			}
			seen[p.Hash] = true
			papers = append(papers, p)
		}
	}

	sortPapers(papers)
	return papers, nil
}

// Semantic ranks stored papers by cosine similarity to the query text.
// Matches below threshold are dropped and at most limit results return,
// ordered by similarity descending with normalized title then hash as
// tie-breakers. An empty store yields an empty result without calling
// the embedder.
func (e *Engine) Semantic(ctx context.Context, text string, limit int, threshold float64) ([]Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query text", ErrInvalidQuery)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	stored, err := e.store.EmbeddingConfig()
	if err != nil {
		return nil, err
	}
	if stored.IsZero() {
		// Nothing has been ingested into an embedding space yet.
		return nil, nil
	}
	if err := e.embedder.Config().Validate(stored); err != nil {
		return nil, err
	}

	queryVec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	papers, err := e.store.AllPapers()
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(papers))
	for _, p := range papers {
		sim := cosineSimilarity(queryVec, p.Vector)
		if sim >= threshold {
			matches = append(matches, Match{Paper: p, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		if matches[i].Paper.TitleKey != matches[j].Paper.TitleKey {
			return matches[i].Paper.TitleKey < matches[j].Paper.TitleKey
		}
		return matches[i].Paper.Hash < matches[j].Paper.Hash
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// cosineSimilarity computes the cosine similarity between two vectors,
// accumulating in float64 so rankings are stable across platforms.
// Mismatched or empty vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

// sortPapers orders papers by normalized title then hash.
func sortPapers(papers []paper.Paper) {
	sort.Slice(papers, func(i, j int) bool {
		if papers[i].TitleKey != papers[j].TitleKey {
			return papers[i].TitleKey < papers[j].TitleKey
		}
		return papers[i].Hash < papers[j].Hash
	})
}
