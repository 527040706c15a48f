package main

import (
	"os"
	"path/filepath"

	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
	"github.com/papersurf/papersurf/internal/viz"
)

// writeVizHTML projects the papers into a subgraph, renders it as HTML,
// and writes it to path. Returns the absolute output path; exits on error.
func writeVizHTML(st *store.Store, papers []paper.Paper, path, layout string) string {
	graph, err := viz.Project(st, papers)
	if err != nil {
		exitWithError(ExitError, "building graph: %v", err)
	}

	html, err := viz.GenerateHTML(graph, viz.HTMLOptions{Layout: layout})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		exitWithError(ExitError, "resolving output path: %v", err)
	}
	if err := os.WriteFile(abs, []byte(html), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", abs, err)
	}
	return abs
}
