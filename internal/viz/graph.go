package viz

import (
	"sort"

	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
)

// neighborSource abstracts the store lookup the projection needs.
type neighborSource interface {
	NeighborsOf(paperHash string) ([]store.Neighbor, error)
}

// Project builds the induced subgraph around a set of papers: each paper
// becomes a node, every entity connected to one of the papers is pulled
// in once, and the connecting edges come with it. An entity shared by two
// papers in the set appears as a single node with two edges, which is
// what makes shared authorship and topic overlap visible.
//
// Node and edge order is deterministic: papers in the given order, then
// entities by kind and key.
func Project(src neighborSource, papers []paper.Paper) (*GraphData, error) {
	graph := &GraphData{}

	seen := make(map[string]bool)
	var entityNodes []Node
	connectionCounts := make(map[string]int)

	for _, p := range papers {
		graph.Nodes = append(graph.Nodes, newPaperNode(p))

		neighbors, err := src.NeighborsOf(p.Hash)
		if err != nil {
			return nil, err
		}

		for _, nb := range neighbors {
			id := nodeID(nb.Node.Kind, nb.Node.Key)
			if !seen[id] {
				seen[id] = true
				entityNodes = append(entityNodes, newEntityNode(nb.Node))
			}
			connectionCounts[id]++

			graph.Edges = append(graph.Edges, Edge{
				Source: paperNodeID(p.Hash),
				Target: id,
				Kind:   string(nb.Edge.Kind),
				Weight: nb.Edge.Weight,
			})
		}
	}

	sort.Slice(entityNodes, func(i, j int) bool {
		if entityNodes[i].Type != entityNodes[j].Type {
			return entityNodes[i].Type < entityNodes[j].Type
		}
		return entityNodes[i].ID < entityNodes[j].ID
	})
	for i := range entityNodes {
		entityNodes[i].ConnectionCount = connectionCounts[entityNodes[i].ID]
	}

	graph.Nodes = append(graph.Nodes, entityNodes...)
	return graph, nil
}

// paperNodeID namespaces paper hashes so they cannot collide with entity keys.
func paperNodeID(hash string) string {
	return "paper:" + hash
}

// nodeID namespaces entity keys by kind.
func nodeID(kind paper.Kind, key string) string {
	return string(kind) + ":" + key
}

// newPaperNode creates a visualization node from a stored paper.
func newPaperNode(p paper.Paper) Node {
	return Node{
		ID:    paperNodeID(p.Hash),
		Type:  string(paper.KindPaper),
		Label: p.Title,
		Title: p.Title,
		DOI:   p.DOI,
		Year:  p.Year,
	}
}

// newEntityNode creates a visualization node from an author, topic, or
// keyword node.
func newEntityNode(n paper.Node) Node {
	return Node{
		ID:    nodeID(n.Kind, n.Key),
		Type:  string(n.Kind),
		Label: n.Label,
	}
}
