package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/extract"
	"github.com/papersurf/papersurf/internal/ingest"
	"github.com/papersurf/papersurf/internal/keywords"
)

var addMaxKeywords int

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().IntVarP(&addMaxKeywords, "keywords", "k", 0, "Maximum keywords per paper (0 = configured default)")
}

var addCmd = &cobra.Command{
	Use:   "add <directory>",
	Short: "Ingest a directory of PDF papers",
	Long: `Scan a directory for PDF files and ingest each one into the graph:
metadata and keywords are extracted, an embedding is generated, and the
paper is linked to its authors, topic, and keywords.

Files already in the library (by content) are skipped. A file that fails
to parse is reported and does not stop the rest of the batch.

Requires a running Ollama instance with the configured embedding model.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

// AddResponse is the response for the add command.
type AddResponse struct {
	Directory  string              `json:"directory"`
	Ingested   int                 `json:"ingested"`
	Duplicates int                 `json:"duplicates"`
	Failed     int                 `json:"failed"`
	Files      []ingest.FileResult `json:"files"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir, err := filepath.Abs(args[0])
	if err != nil {
		exitWithError(ExitError, "resolving directory: %v", err)
	}

	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	st := mustOpenStore(root)
	defer st.Close()

	provider := newProvider(cfg)
	mustValidateOllama(ctx, provider, true)

	maxKeywords := addMaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = cfg.Keywords.Max
	}

	pipeline := ingest.New(st, extract.NewPDFExtractor(), keywords.NewFrequencyExtractor(), provider, maxKeywords)

	report, err := pipeline.Run(ctx, dir)
	if err != nil {
		if errors.Is(err, embedding.ErrConfigMismatch) {
			exitWithError(ExitDataError, "%v\n\nThe library was built with a different embedding model; re-ingest into a fresh library to switch.", err)
		}
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Ingested %d, skipped %d duplicate(s), %d failed\n\n", report.Ingested, report.Duplicates, report.Failed)
		for _, f := range report.Files {
			fmt.Printf("  [%s] %s\n", f.Status, f.Path)
			if f.Error != "" {
				fmt.Printf("      %s\n", f.Error)
			}
			if f.Warning != "" {
				fmt.Printf("      warning: %s\n", f.Warning)
			}
		}
	} else {
		outputJSON(AddResponse{
			Directory:  dir,
			Ingested:   report.Ingested,
			Duplicates: report.Duplicates,
			Failed:     report.Failed,
			Files:      report.Files,
		})
	}
	return nil
}
