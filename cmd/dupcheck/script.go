package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	scriptProject string
	scriptExclude string
)

var checkScriptCmd = &cobra.Command{
	Use:   "check-script [file]",
	Short: "Check an automation script for duplicates",
	Long: `Check automation script source against the project's stored scripts.

Reads the script from the given file, or from stdin when no file is
provided. Comments and formatting are stripped before comparison, so a
reformatted or re-commented copy of an existing script still matches.

Example:
  dupcheck check-script --project proj-1 generated/login_test.py
  cat login_test.py | dupcheck check-script --project proj-1`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			code []byte
			err  error
		)
		if len(args) > 0 {
			code, err = os.ReadFile(args[0])
		} else {
			code, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read script: %v\n", err)
			os.Exit(1)
		}

		result, err := detector.CheckScript(cmd.Context(), string(code), scriptProject, scriptExclude)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printResult(result)
	},
}

func init() {
	rootCmd.AddCommand(checkScriptCmd)
	checkScriptCmd.Flags().StringVar(&scriptProject, "project", "", "Project id scoping the corpus (required)")
	checkScriptCmd.Flags().StringVar(&scriptExclude, "exclude", "", "Script id to exclude (when re-checking an edit)")
	_ = checkScriptCmd.MarkFlagRequired("project")
}
