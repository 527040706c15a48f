package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/query"
)

var (
	semanticLimit     int
	semanticThreshold float64
	semanticVizPath   string
	semanticLayout    string
)

func init() {
	rootCmd.AddCommand(semanticCmd)

	semanticCmd.Flags().IntVarP(&semanticLimit, "limit", "l", 0, "Maximum number of results (0 = configured default)")
	semanticCmd.Flags().Float64VarP(&semanticThreshold, "threshold", "t", -1, "Minimum similarity threshold (-1 = configured default)")
	semanticCmd.Flags().StringVar(&semanticVizPath, "viz", "", "Write an HTML graph of the results to this file")
	semanticCmd.Flags().StringVar(&semanticLayout, "layout", "force", "Graph layout: force, circle, or grid")
}

// SemanticResult is one semantic search hit in command output.
type SemanticResult struct {
	PaperResult
	Similarity float64 `json:"similarity"`
}

// SemanticResponse is the response for the semantic search command.
type SemanticResponse struct {
	Query     string           `json:"query"`
	Results   []SemanticResult `json:"results"`
	Total     int              `json:"total"`
	Threshold float64          `json:"threshold"`
	Model     string           `json:"model"`
	VizPath   string           `json:"viz_path,omitempty"`
}

var semanticCmd = &cobra.Command{
	Use:   "semantic <query>",
	Short: "Search papers by semantic similarity",
	Long: `Search papers using semantic similarity to find conceptually related
papers, even without exact word matches.

The query is embedded with the same model that embedded the library, and
papers are ranked by cosine similarity. Requires a running Ollama instance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSemantic,
}

func runSemantic(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.TrimSpace(args[0])
	if text == "" {
		exitWithError(ExitError, "search query cannot be empty")
	}

	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	limit := semanticLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	threshold := semanticThreshold
	if threshold < 0 {
		threshold = cfg.Search.Threshold
	}

	st := mustOpenStore(root)
	defer st.Close()

	provider := newProvider(cfg)
	mustValidateOllama(ctx, provider, false)

	engine := query.NewEngine(st, provider)
	matches, err := engine.Semantic(ctx, text, limit, threshold)
	if err != nil {
		if errors.Is(err, embedding.ErrConfigMismatch) {
			exitWithError(ExitDataError, "%v\n\nConfigure the model the library was built with.", err)
		}
		if errors.Is(err, query.ErrInvalidQuery) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitError, "searching: %v", err)
	}

	vizPath := ""
	if semanticVizPath != "" {
		papers := make([]paper.Paper, 0, len(matches))
		for _, m := range matches {
			papers = append(papers, m.Paper)
		}
		vizPath = writeVizHTML(st, papers, semanticVizPath, semanticLayout)
	}

	results := make([]SemanticResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SemanticResult{
			PaperResult: newPaperResult(m.Paper),
			Similarity:  m.Similarity,
		})
	}

	if humanOutput {
		fmt.Printf("Search: %q\n", text)
		fmt.Printf("Found %d paper(s) (threshold: %.2f)\n\n", len(results), threshold)
		printMatchesHuman(matches)
		if vizPath != "" {
			fmt.Printf("Graph written to %s\n", vizPath)
		}
	} else {
		outputJSON(SemanticResponse{
			Query:     text,
			Results:   results,
			Total:     len(results),
			Threshold: threshold,
			Model:     provider.Config().Model,
			VizPath:   vizPath,
		})
	}
	return nil
}
