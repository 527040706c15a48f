package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/extract"
	"github.com/papersurf/papersurf/internal/keywords"
	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
)

// fakeExtractor serves canned extraction results keyed by base file name.
// Unregistered files fail with ErrExtractionFailed, standing in for
// corrupt PDFs.
type fakeExtractor struct {
	results map[string]*extract.Result
}

func (f *fakeExtractor) Extract(path string) (*extract.Result, error) {
	res, ok := f.results[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", extract.ErrExtractionFailed, path)
	}
	return res, nil
}

// fakeEmbedder produces deterministic vectors derived from the text.
type fakeEmbedder struct {
	cfg   embedding.Config
	calls int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{cfg: embedding.Config{Model: "fake-model", Dimensions: 4}}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	v := make([]float32, f.cfg.Dimensions)
	for i, b := range []byte(text) {
		v[i%f.cfg.Dimensions] += float32(b) / 255
	}
	return v, nil
}

func (f *fakeEmbedder) Config() embedding.Config { return f.cfg }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "papers.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// writePDFs creates files named name -> content under a temp dir.
func writePDFs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func simpleResult(title, author string) *extract.Result {
	return &extract.Result{
		Text:        "Some body text about " + title,
		TitleHint:   title,
		AuthorHints: []string{author},
		Pages:       1,
	}
}

func TestRun_IngestsValidFiles(t *testing.T) {
	s := newTestStore(t)
	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Tree Inference", "Robinson Fuller"),
		"b.pdf": simpleResult("Genome Assembly", "Frances Siu"),
	}}
	dir := writePDFs(t, map[string]string{"a.pdf": "content-a", "b.pdf": "content-b"})

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	report, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Ingested != 2 || report.Duplicates != 0 || report.Failed != 0 {
		t.Errorf("report = %+v, want 2 ingested", report)
	}

	count, _ := s.CountPapers()
	if count != 2 {
		t.Errorf("store has %d papers, want 2", count)
	}

	papers, err := s.PapersForNode(paper.KindAuthor, "robinson fuller")
	if err != nil {
		t.Fatalf("PapersForNode: %v", err)
	}
	if len(papers) != 1 || papers[0].Title != "Tree Inference" {
		t.Errorf("author lookup = %v", papers)
	}
}

func TestRun_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Tree Inference", "Robinson Fuller"),
		"b.pdf": simpleResult("Genome Assembly", "Frances Siu"),
	}}
	dir := writePDFs(t, map[string]string{"a.pdf": "content-a", "b.pdf": "content-b"})
	emb := newFakeEmbedder()

	p := New(s, ex, keywords.NewFrequencyExtractor(), emb, 3)

	first, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	embedCallsAfterFirst := emb.calls

	second, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if second.Ingested != 0 {
		t.Errorf("second run ingested %d, want 0", second.Ingested)
	}
	if second.Duplicates != first.Ingested {
		t.Errorf("second run duplicates = %d, want %d", second.Duplicates, first.Ingested)
	}
	if emb.calls != embedCallsAfterFirst {
		t.Errorf("duplicate detection should not re-embed (calls %d -> %d)", embedCallsAfterFirst, emb.calls)
	}

	count, _ := s.CountPapers()
	if count != 2 {
		t.Errorf("store has %d papers after re-run, want 2", count)
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	s := newTestStore(t)
	results := map[string]*extract.Result{}
	files := map[string]string{}
	for i := 1; i <= 5; i++ {
		name := fmt.Sprintf("paper%d.pdf", i)
		files[name] = fmt.Sprintf("content-%d", i)
		if i != 3 {
			// paper3.pdf is the corrupt blob: no registered result.
			results[name] = simpleResult(fmt.Sprintf("Paper Number %d", i), "Robinson Fuller")
		}
	}
	dir := writePDFs(t, files)

	p := New(s, &fakeExtractor{results: results}, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	report, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Ingested != 4 || report.Failed != 1 {
		t.Errorf("report = %+v, want 4 ingested / 1 failed", report)
	}

	var failed *FileResult
	for i := range report.Files {
		if report.Files[i].Status == StatusFailed {
			failed = &report.Files[i]
		}
	}
	if failed == nil {
		t.Fatal("no failed entry in report")
	}
	if filepath.Base(failed.Path) != "paper3.pdf" {
		t.Errorf("failed file = %s, want paper3.pdf", failed.Path)
	}
	if !strings.Contains(failed.Error, "extraction failed") {
		t.Errorf("failure not attributed to extraction: %q", failed.Error)
	}

	count, _ := s.CountPapers()
	if count != 4 {
		t.Errorf("store has %d papers, corrupt file must leave no node", count)
	}
}

func TestRun_TitleCollisionWarning(t *testing.T) {
	s := newTestStore(t)
	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Shared Title", "Robinson Fuller"),
		"b.pdf": simpleResult("Shared  TITLE", "Frances Siu"), // normalizes equal
	}}
	dir := writePDFs(t, map[string]string{"a.pdf": "content-a", "b.pdf": "content-b"})

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	report, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Different content: both ingest, the second with a warning.
	if report.Ingested != 2 {
		t.Fatalf("ingested = %d, want 2 (title-only match is not a duplicate)", report.Ingested)
	}
	if report.Files[0].Warning != "" {
		t.Errorf("first file should carry no warning, got %q", report.Files[0].Warning)
	}
	if report.Files[1].Warning == "" {
		t.Error("second file should carry a collision warning")
	}
}

func TestRun_ConfigMismatchHaltsBeforeMutation(t *testing.T) {
	s := newTestStore(t)

	// Record a different embedding space, as if the store were built
	// with another model.
	tx, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.SetEmbeddingConfig(embedding.Config{Model: "other-model", Dimensions: 768}); err != nil {
		t.Fatalf("SetEmbeddingConfig: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Tree Inference", "Robinson Fuller"),
	}}
	dir := writePDFs(t, map[string]string{"a.pdf": "content-a"})

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	_, err = p.Run(context.Background(), dir)
	if !errors.Is(err, embedding.ErrConfigMismatch) {
		t.Fatalf("err = %v, want ErrConfigMismatch", err)
	}

	count, _ := s.CountPapers()
	if count != 0 {
		t.Errorf("store mutated despite config mismatch: %d papers", count)
	}
}

func TestRun_CancelledBetweenFiles(t *testing.T) {
	s := newTestStore(t)
	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Tree Inference", "Robinson Fuller"),
	}}
	dir := writePDFs(t, map[string]string{"a.pdf": "content-a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	report, err := p.Run(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if report == nil || len(report.Files) != 0 {
		t.Errorf("report = %+v, want empty partial report", report)
	}

	count, _ := s.CountPapers()
	if count != 0 {
		t.Errorf("cancelled run mutated the store: %d papers", count)
	}
}

func TestRun_MissingAuthorResolvesToSentinel(t *testing.T) {
	s := newTestStore(t)
	res := simpleResult("Anonymous Paper", "")
	res.AuthorHints = nil
	ex := &fakeExtractor{results: map[string]*extract.Result{"a.pdf": res}}
	dir := writePDFs(t, map[string]string{"a.pdf": "content-a"})

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	if _, err := p.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run: %v", err)
	}

	papers, err := s.PapersForNode(paper.KindAuthor, "unknown")
	if err != nil {
		t.Fatalf("PapersForNode: %v", err)
	}
	if len(papers) != 1 {
		t.Errorf("want the paper linked to the sentinel unknown author, got %d", len(papers))
	}
}

func TestRun_DeterministicFileOrder(t *testing.T) {
	s := newTestStore(t)
	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Alpha", "A"),
		"b.pdf": simpleResult("Beta", "B"),
		"c.pdf": simpleResult("Gamma", "C"),
	}}
	dir := writePDFs(t, map[string]string{
		"c.pdf": "content-c",
		"a.pdf": "content-a",
		"b.pdf": "content-b",
	})

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	report, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"a.pdf", "b.pdf", "c.pdf"}
	if len(report.Files) != len(want) {
		t.Fatalf("len(Files) = %d, want %d", len(report.Files), len(want))
	}
	for i, name := range want {
		if filepath.Base(report.Files[i].Path) != name {
			t.Errorf("Files[%d] = %s, want %s", i, report.Files[i].Path, name)
		}
	}
}

func TestRun_SkipsNonPDFEntries(t *testing.T) {
	s := newTestStore(t)
	ex := &fakeExtractor{results: map[string]*extract.Result{
		"a.pdf": simpleResult("Alpha", "A"),
	}}
	dir := writePDFs(t, map[string]string{
		"a.pdf":      "content-a",
		"notes.txt":  "not a pdf",
		"README.md":  "also not",
	})

	p := New(s, ex, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)
	report, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Files) != 1 {
		t.Errorf("processed %d files, want 1 (non-PDFs skipped)", len(report.Files))
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	s := newTestStore(t)
	p := New(s, &fakeExtractor{}, keywords.NewFrequencyExtractor(), newFakeEmbedder(), 3)

	if _, err := p.Run(context.Background(), "/definitely/not/here"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
