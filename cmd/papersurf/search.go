package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papersurf/papersurf/internal/query"
)

var (
	searchVizPath string
	searchLayout  string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchVizPath, "viz", "", "Write an HTML graph of the results to this file")
	searchCmd.Flags().StringVar(&searchLayout, "layout", "force", "Graph layout: force, circle, or grid")
}

var searchCmd = &cobra.Command{
	Use:   "search <title|author|topic> <term>",
	Short: "Search papers by exact field match",
	Long: `Find papers whose title, author, or topic contains the term.

Matching is case-insensitive and folds diacritics, so 'fuller' matches
'Robinson Fuller' and 'evolution' matches 'Évolution'. With --viz the
matching papers and everything connected to them are written as an
interactive HTML graph.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Field   string        `json:"field"`
	Term    string        `json:"term"`
	Results []PaperResult `json:"results"`
	Total   int           `json:"total"`
	VizPath string        `json:"viz_path,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	field, err := query.ParseField(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	term := args[1]

	root := mustFindLibrary()

	st := mustOpenStore(root)
	defer st.Close()

	engine := query.NewEngine(st, nil)
	papers, err := engine.Exact(field, term)
	if err != nil {
		if errors.Is(err, query.ErrInvalidQuery) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitError, "searching: %v", err)
	}

	vizPath := ""
	if searchVizPath != "" {
		vizPath = writeVizHTML(st, papers, searchVizPath, searchLayout)
	}

	if humanOutput {
		fmt.Printf("Found %d paper(s) matching %s %q\n\n", len(papers), field, term)
		printPapersHuman(papers, SearchTitleMaxLen)
		if vizPath != "" {
			fmt.Printf("Graph written to %s\n", vizPath)
		}
	} else {
		outputJSON(SearchResponse{
			Field:   string(field),
			Term:    term,
			Results: newPaperResults(papers),
			Total:   len(papers),
			VizPath: vizPath,
		})
	}
	return nil
}
