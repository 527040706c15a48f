package viz

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/papersurf/papersurf/internal/identity"
	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "papers.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func addPaper(t *testing.T, s *store.Store, title string, authors []string, kws []string) paper.Paper {
	t.Helper()
	p := paper.Paper{
		Hash:     identity.ContentHash([]byte(title)),
		Title:    title,
		TitleKey: identity.TitleKey(title),
		Path:     "/papers/x.pdf",
		Vector:   []float32{1, 0},
	}

	tx, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if err := tx.UpsertPaper(p); err != nil {
		t.Fatalf("UpsertPaper: %v", err)
	}
	link := func(kind paper.Kind, raw string, weight float64) {
		key := identity.Key(raw)
		if err := tx.UpsertNode(paper.Node{Kind: kind, Key: key, Label: raw}); err != nil {
			t.Fatalf("UpsertNode: %v", err)
		}
		err := tx.UpsertEdge(paper.Edge{
			Kind: paper.EdgeKindFor(kind), PaperHash: p.Hash,
			NodeKind: kind, NodeKey: key, Weight: weight,
		})
		if err != nil {
			t.Fatalf("UpsertEdge: %v", err)
		}
	}
	for _, a := range authors {
		link(paper.KindAuthor, a, 0)
	}
	for _, kw := range kws {
		link(paper.KindKeyword, kw, 0.5)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return p
}

func TestProject_SharedAuthorAppearsOnce(t *testing.T) {
	s := newTestStore(t)
	p1 := addPaper(t, s, "First Paper", []string{"Robinson Fuller"}, nil)
	p2 := addPaper(t, s, "Second Paper", []string{"Robinson Fuller"}, nil)

	graph, err := Project(s, []paper.Paper{p1, p2})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	// Two paper nodes plus one shared author node.
	if len(graph.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3: %+v", len(graph.Nodes), graph.Nodes)
	}
	if len(graph.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(graph.Edges))
	}

	var author *Node
	for i := range graph.Nodes {
		if graph.Nodes[i].Type == "author" {
			author = &graph.Nodes[i]
		}
	}
	if author == nil {
		t.Fatal("no author node in projection")
	}
	if author.ConnectionCount != 2 {
		t.Errorf("shared author connectionCount = %d, want 2", author.ConnectionCount)
	}

	for _, e := range graph.Edges {
		if e.Target != author.ID || e.Kind != string(paper.EdgeAuthoredBy) {
			t.Errorf("edge %+v does not point at the shared author", e)
		}
	}
}

func TestProject_OnlyGivenPapersIncluded(t *testing.T) {
	s := newTestStore(t)
	p1 := addPaper(t, s, "Included", []string{"Ann Lee"}, []string{"phylogenetics"})
	addPaper(t, s, "Excluded", []string{"Bob Mora"}, nil)

	graph, err := Project(s, []paper.Paper{p1})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	for _, n := range graph.Nodes {
		if n.Label == "Excluded" || n.Label == "Bob Mora" {
			t.Errorf("projection leaked node %+v from outside the paper set", n)
		}
	}
	// One paper, one author, one keyword.
	if len(graph.Nodes) != 3 {
		t.Errorf("got %d nodes, want 3", len(graph.Nodes))
	}
}

func TestProject_PaperNodeIDsAreNamespaced(t *testing.T) {
	s := newTestStore(t)
	p := addPaper(t, s, "Some Paper", nil, nil)

	graph, err := Project(s, []paper.Paper{p})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(graph.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(graph.Nodes))
	}
	if !strings.HasPrefix(graph.Nodes[0].ID, "paper:") {
		t.Errorf("paper node ID = %q, want paper: prefix", graph.Nodes[0].ID)
	}
}

func TestProject_Empty(t *testing.T) {
	s := newTestStore(t)

	graph, err := Project(s, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !graph.IsEmpty() {
		t.Errorf("projection of no papers should be empty, got %+v", graph)
	}
}

func TestGenerateHTML(t *testing.T) {
	s := newTestStore(t)
	p := addPaper(t, s, "Some Paper", []string{"Ann Lee"}, []string{"inference"})

	graph, err := Project(s, []paper.Paper{p})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	html, err := GenerateHTML(graph, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	for _, want := range []string{"cytoscape", "Some Paper", "Ann Lee", "inference"} {
		if !strings.Contains(html, want) {
			t.Errorf("generated HTML missing %q", want)
		}
	}
}

func TestGenerateHTML_EmptyGraph(t *testing.T) {
	html, err := GenerateHTML(&GraphData{}, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	if !strings.Contains(html, "No matching papers") {
		t.Error("empty graph should render the empty state")
	}
}

func TestGenerateHTML_InvalidLayout(t *testing.T) {
	if _, err := GenerateHTML(&GraphData{}, HTMLOptions{Layout: "spiral"}); err == nil {
		t.Fatal("expected error for invalid layout")
	}
}
