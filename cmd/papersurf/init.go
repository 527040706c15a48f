package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papersurf/papersurf/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a paper library",
	Long: `Create a .papersurf directory with a default configuration, in the
given path or the current directory.

The library root is where 'papersurf add' stores the graph database.
Other commands find it by walking up from the working directory, or
through the PAPERSURF_ROOT environment variable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	if len(args) == 1 {
		root, err = filepath.Abs(args[0])
		if err != nil {
			exitWithError(ExitError, "resolving path: %v", err)
		}
	}

	if _, err := config.Init(root); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized empty paper library in %s\n", config.LibraryPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.LibraryPath(root)})
	}
	return nil
}
