// Package viz projects query results into a renderable subgraph and
// generates interactive HTML visualizations of it.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a paper, author, topic, or keyword in the graph.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "paper", "author", "topic", or "keyword"

	// Display
	Label string `json:"label"`

	// Paper-specific fields (for tooltips)
	Title string `json:"title,omitempty"`
	DOI   string `json:"doi,omitempty"`
	Year  int    `json:"year,omitempty"`

	// Sizing for entity nodes
	ConnectionCount int `json:"connectionCount"`
}

// Edge represents a paper-entity relationship.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
