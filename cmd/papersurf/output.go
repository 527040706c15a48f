package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/query"
)

// Title truncation lengths by context
const (
	SearchTitleMaxLen = 70 // Used in search result summaries
	ListTitleMaxLen   = 50 // Used in list command output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// PaperResult is one paper in command output, without the embedding vector.
type PaperResult struct {
	Hash  string `json:"hash"`
	Title string `json:"title"`
	DOI   string `json:"doi,omitempty"`
	Year  int    `json:"year,omitempty"`
	Path  string `json:"path"`
}

// newPaperResult strips a stored paper down to its output fields.
func newPaperResult(p paper.Paper) PaperResult {
	return PaperResult{
		Hash:  p.Hash,
		Title: p.Title,
		DOI:   p.DOI,
		Year:  p.Year,
		Path:  p.Path,
	}
}

func newPaperResults(papers []paper.Paper) []PaperResult {
	results := make([]PaperResult, 0, len(papers))
	for _, p := range papers {
		results = append(results, newPaperResult(p))
	}
	return results
}

// printPapersHuman prints papers in human-readable format.
func printPapersHuman(papers []paper.Paper, maxTitleLen int) {
	for i, p := range papers {
		fmt.Printf("%d. %s\n", i+1, truncateString(p.Title, maxTitleLen))
		if p.Year != 0 || p.DOI != "" {
			fmt.Printf("   %s", formatYear(p.Year))
			if p.DOI != "" {
				fmt.Printf("  doi:%s", p.DOI)
			}
			fmt.Println()
		}
		fmt.Printf("   %s\n\n", p.Path)
	}
}

// printMatchesHuman prints semantic search hits with their scores.
func printMatchesHuman(matches []query.Match) {
	for i, m := range matches {
		fmt.Printf("%d. [%.2f] %s\n", i+1, m.Similarity, truncateString(m.Paper.Title, SearchTitleMaxLen))
		fmt.Printf("   %s\n\n", m.Paper.Path)
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func formatYear(year int) string {
	if year == 0 {
		return "n.d."
	}
	return fmt.Sprintf("%d", year)
}
