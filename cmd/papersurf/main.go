// Package main provides the papersurf CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/papersurf/papersurf/internal/config"
	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "papersurf",
	Short: "Paper ingestion and retrieval engine",
	Long: `papersurf ingests directories of PDF papers into a property graph
and answers questions about them.

Core features:
  - PDF metadata and keyword extraction into a paper/author/topic/keyword graph
  - Exact search over titles, authors, and topics
  - Semantic search via Ollama embeddings
  - Interactive HTML graph visualization of results

All commands output JSON by default for agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a
// library. Checks PAPERSURF_ROOT first, then the current working directory.
func getStartingDirectory() (string, int) {
	_ = godotenv.Load()
	if root := os.Getenv("PAPERSURF_ROOT"); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindLibrary finds and validates the library, exits on error.
// Returns the library root path.
func mustFindLibrary() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindLibrary(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'papersurf init' to create one.", err)
	}
	return root
}

// mustOpenStore opens the graph database, exits on error.
// The caller is responsible for calling Close() on the returned store.
func mustOpenStore(root string) *store.Store {
	st, err := store.Open(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return st
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newProvider builds the Ollama embedding provider from configuration,
// honoring the PAPERSURF_OLLAMA_URL environment override.
func newProvider(cfg *config.Config) *embedding.Ollama {
	url := cfg.Ollama.URL
	if env := os.Getenv("PAPERSURF_OLLAMA_URL"); env != "" {
		url = env
	}
	return embedding.NewOllama(
		embedding.WithBaseURL(url),
		embedding.WithModel(cfg.Ollama.Model, cfg.Ollama.Dimensions),
	)
}

// mustValidateOllama checks that Ollama is running and optionally that the
// configured embedding model is pulled.
func mustValidateOllama(ctx context.Context, provider *embedding.Ollama, checkModel bool) {
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitOllamaError, "Ollama not available at %s: %v\n\nStart it with 'ollama serve'.", provider.BaseURL(), err)
	}
	if !checkModel {
		return
	}
	ok, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitOllamaError, "checking Ollama models: %v", err)
	}
	if !ok {
		exitWithError(ExitModelNotFound, "embedding model %q not found\n\nPull it with 'ollama pull %s'.",
			provider.Config().Model, provider.Config().Model)
	}
}
