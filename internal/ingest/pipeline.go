// Package ingest orchestrates turning a directory of PDFs into graph
// mutations. Each file is processed independently so one unreadable
// document never aborts the batch.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/extract"
	"github.com/papersurf/papersurf/internal/identity"
	"github.com/papersurf/papersurf/internal/keywords"
	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
)

// MaxEmbedChars bounds the text passed to the embedder when no abstract
// is available. Embedding models have limited context windows; the
// leading pages carry the semantic signal that matters for retrieval.
const MaxEmbedChars = 8000

// FileStatus classifies the outcome for one file in a batch.
type FileStatus string

const (
	StatusIngested  FileStatus = "ingested"
	StatusDuplicate FileStatus = "duplicate"
	StatusFailed    FileStatus = "failed"
)

// FileResult is the per-file outcome detail in a batch report.
type FileResult struct {
	Path    string     `json:"path"`
	Status  FileStatus `json:"status"`
	Error   string     `json:"error,omitempty"`
	Warning string     `json:"warning,omitempty"`
}

// Report summarizes one batch ingestion.
type Report struct {
	Ingested   int          `json:"ingested"`
	Duplicates int          `json:"duplicates"`
	Failed     int          `json:"failed"`
	Files      []FileResult `json:"files"`
}

// Pipeline wires the extraction, keyword, and embedding stages to the
// graph store. Handles are passed in explicitly; the pipeline holds no
// ambient model state.
type Pipeline struct {
	store       *store.Store
	extractor   extract.Extractor
	keywords    keywords.Extractor
	embedder    embedding.Provider
	maxKeywords int
}

// New creates an ingestion pipeline.
func New(st *store.Store, ex extract.Extractor, kw keywords.Extractor, emb embedding.Provider, maxKeywords int) *Pipeline {
	if maxKeywords <= 0 {
		maxKeywords = keywords.DefaultMaxKeywords
	}
	return &Pipeline{
		store:       st,
		extractor:   ex,
		keywords:    kw,
		embedder:    emb,
		maxKeywords: maxKeywords,
	}
}

// Run ingests every PDF under dir. Files are processed in lexicographic
// path order so repeated runs over an unchanged directory are idempotent
// and produce identical reports.
//
// The embedding configuration guard runs before any work: ingesting into
// a store built with a different embedding space fails with
// embedding.ErrConfigMismatch and mutates nothing.
//
// Per-file failures are captured in the report, never returned as errors.
// Cancellation is honored between files; an uncommitted file is abandoned
// with no partial graph mutation.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Report, error) {
	stored, err := p.store.EmbeddingConfig()
	if err != nil {
		return nil, err
	}
	if err := p.embedder.Config().Validate(stored); err != nil {
		return nil, err
	}

	files, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := p.ingestFile(ctx, path)
		report.Files = append(report.Files, result)
		switch result.Status {
		case StatusIngested:
			report.Ingested++
		case StatusDuplicate:
			report.Duplicates++
		case StatusFailed:
			report.Failed++
		}
	}

	return report, nil
}

// ingestFile runs the per-file extract -> resolve -> embed -> commit
// sequence. Every failure is attributed to this file only.
func (p *Pipeline) ingestFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}

	fail := func(err error) FileResult {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("%w: reading %s: %v", extract.ErrExtractionFailed, path, err))
	}
	hash := identity.ContentHash(data)

	// Duplicate detection runs before extraction and embedding so a
	// re-run over an unchanged directory needs neither.
	existing, err := p.store.PaperByHash(hash)
	if err != nil {
		return fail(err)
	}
	if existing != nil {
		result.Status = StatusDuplicate
		return result
	}

	res, err := p.extractor.Extract(path)
	if err != nil {
		return fail(err)
	}

	cand := resolveMetadata(res, path)

	kws, err := p.keywords.ExtractKeywords(res.Text, p.maxKeywords)
	if err != nil {
		return fail(fmt.Errorf("extracting keywords for %s: %w", path, err))
	}

	vector, err := p.embedder.Embed(ctx, embedText(cand, res.Text))
	if err != nil {
		return fail(fmt.Errorf("embedding %s: %w", path, err))
	}

	titleKey := identity.TitleKey(cand.Title)

	// Title-only matches are a naming collision, not a duplicate: two
	// different files may coincidentally share a title.
	collisions, err := p.store.PapersByTitleKey(titleKey)
	if err != nil {
		return fail(err)
	}
	if len(collisions) > 0 {
		result.Warning = fmt.Sprintf("title %q collides with %d existing paper(s)", cand.Title, len(collisions))
	}

	p.fillTopic(&cand, kws)

	doc := paper.Paper{
		Hash:       hash,
		Title:      cand.Title,
		TitleKey:   titleKey,
		Abstract:   cand.Abstract,
		DOI:        cand.DOI,
		Year:       cand.Year,
		Path:       path,
		Vector:     vector,
		IngestedAt: time.Now().UTC(),
	}

	if err := p.commit(doc, cand, kws); err != nil {
		return fail(err)
	}

	result.Status = StatusIngested
	return result
}

// commit writes the paper and all of its relationships in one transaction.
func (p *Pipeline) commit(doc paper.Paper, cand paper.Candidate, kws []keywords.Keyword) error {
	tx, err := p.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.SetEmbeddingConfig(p.embedder.Config()); err != nil {
		return err
	}
	if err := tx.UpsertPaper(doc); err != nil {
		return err
	}

	authors := cand.Authors
	if len(authors) == 0 {
		authors = []string{""} // resolves to the sentinel unknown author
	}
	for _, author := range authors {
		if err := p.link(tx, doc.Hash, paper.KindAuthor, author, 0); err != nil {
			return err
		}
	}

	if cand.Topic != "" {
		if err := p.link(tx, doc.Hash, paper.KindTopic, cand.Topic, 0); err != nil {
			return err
		}
	}

	for _, kw := range kws {
		if err := p.link(tx, doc.Hash, paper.KindKeyword, kw.Term, kw.Weight); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// link resolves the identity of one raw entity string and connects the
// paper to it, creating the node if absent within the same transaction.
func (p *Pipeline) link(tx *store.Tx, paperHash string, kind paper.Kind, raw string, weight float64) error {
	key := identity.Key(raw)
	label := strings.TrimSpace(raw)
	if label == "" {
		label = identity.UnknownKey
	}

	if err := tx.UpsertNode(paper.Node{Kind: kind, Key: key, Label: label}); err != nil {
		return err
	}
	return tx.UpsertEdge(paper.Edge{
		Kind:      paper.EdgeKindFor(kind),
		PaperHash: paperHash,
		NodeKind:  kind,
		NodeKey:   key,
		Weight:    weight,
	})
}

// fillTopic synthesizes a topic from the top keyword when the document
// metadata carried no subject.
func (p *Pipeline) fillTopic(cand *paper.Candidate, kws []keywords.Keyword) {
	if cand.Topic == "" && len(kws) > 0 {
		cand.Topic = kws[0].Term
	}
}

// embedText picks the text to embed: the abstract when available,
// otherwise the leading slice of the full text.
func embedText(cand paper.Candidate, fullText string) string {
	if cand.Abstract != "" {
		return cand.Abstract
	}
	if len(fullText) > MaxEmbedChars {
		return fullText[:MaxEmbedChars]
	}
	return fullText
}

// listPDFs returns the PDF files directly under dir in lexicographic order.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
