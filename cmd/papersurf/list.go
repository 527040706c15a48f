package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papersurf/papersurf/internal/paper"
	"github.com/papersurf/papersurf/internal/store"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all papers in the library",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// ListEntry is one paper with its authors in list output.
type ListEntry struct {
	PaperResult
	Authors []string `json:"authors"`
}

// ListResponse is the response for the list command.
type ListResponse struct {
	Papers []ListEntry `json:"papers"`
	Total  int         `json:"total"`
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	st := mustOpenStore(root)
	defer st.Close()

	papers, err := st.AllPapers()
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	entries := make([]ListEntry, 0, len(papers))
	for _, p := range papers {
		authors, err := paperAuthors(st, p.Hash)
		if err != nil {
			exitWithError(ExitError, "listing authors for %s: %v", p.Hash, err)
		}
		entries = append(entries, ListEntry{PaperResult: newPaperResult(p), Authors: authors})
	}

	if humanOutput {
		fmt.Printf("%d paper(s)\n\n", len(entries))
		for i, e := range entries {
			fmt.Printf("%d. %s\n", i+1, truncateString(e.Title, ListTitleMaxLen))
			fmt.Printf("   %s (%s)", strings.Join(e.Authors, ", "), formatYear(e.Year))
			if e.DOI != "" {
				fmt.Printf("  doi:%s", e.DOI)
			}
			fmt.Printf("\n   %s\n\n", e.Path)
		}
	} else {
		outputJSON(ListResponse{Papers: entries, Total: len(entries)})
	}
	return nil
}

// paperAuthors returns the display labels of the paper's authors.
func paperAuthors(st *store.Store, hash string) ([]string, error) {
	neighbors, err := st.NeighborsOf(hash)
	if err != nil {
		return nil, err
	}
	var authors []string
	for _, nb := range neighbors {
		if nb.Node.Kind == paper.KindAuthor {
			authors = append(authors, nb.Node.Label)
		}
	}
	return authors, nil
}
