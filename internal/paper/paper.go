// Package paper defines the core domain types for the paper graph.
package paper

import "time"

// Kind identifies a node type in the property graph.
type Kind string

const (
	KindPaper   Kind = "paper"
	KindAuthor  Kind = "author"
	KindTopic   Kind = "topic"
	KindKeyword Kind = "keyword"
)

// EdgeKind identifies a typed relationship between a paper and another node.
type EdgeKind string

const (
	EdgeAuthoredBy EdgeKind = "AUTHORED_BY" // Paper -> Author
	EdgeHasTopic   EdgeKind = "HAS_TOPIC"   // Paper -> Topic
	EdgeHasKeyword EdgeKind = "HAS_KEYWORD" // Paper -> Keyword, weighted
)

// EdgeKindFor returns the edge kind connecting papers to nodes of the given kind.
func EdgeKindFor(kind Kind) EdgeKind {
	switch kind {
	case KindAuthor:
		return EdgeAuthoredBy
	case KindTopic:
		return EdgeHasTopic
	case KindKeyword:
		return EdgeHasKeyword
	}
	return ""
}

// Paper represents one ingested document.
type Paper struct {
	// Identity: content hash of the source file bytes.
	Hash string `json:"hash"`

	// Metadata
	Title    string `json:"title"`
	TitleKey string `json:"title_key"` // Normalized title, used for collision detection and ordering
	Abstract string `json:"abstract,omitempty"`
	DOI      string `json:"doi,omitempty"`
	Year     int    `json:"year,omitempty"`
	Path     string `json:"path"` // Source file path at ingestion time

	// Embedding vector in the store's configured embedding space.
	Vector []float32 `json:"-"`

	IngestedAt time.Time `json:"ingested_at"`
}

// Node is a non-paper graph node (author, topic, or keyword).
type Node struct {
	Kind  Kind   `json:"kind"`
	Key   string `json:"key"`   // Normalization key; identity within the kind
	Label string `json:"label"` // Display form as first seen
}

// Edge is a typed relationship from a paper to a node.
type Edge struct {
	Kind      EdgeKind `json:"kind"`
	PaperHash string   `json:"paper_hash"`
	NodeKind  Kind     `json:"node_kind"`
	NodeKey   string   `json:"node_key"`
	Weight    float64  `json:"weight,omitempty"` // Only meaningful for HAS_KEYWORD
}

// Candidate holds metadata extracted from a document before identity
// resolution. Empty fields mean the extractor found nothing; the ingestion
// pipeline degrades to filename-derived values where required.
type Candidate struct {
	Title             string
	TitleFromFilename bool // True when Title was derived from the file name
	Authors           []string
	Topic             string
	Abstract          string
	DOI               string
	Year              int
}
