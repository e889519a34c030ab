package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkSessionCmd = &cobra.Command{
	Use:   "check-session <session-id>",
	Short: "Check all files of a generation session for duplicates",
	Long: `Check every generated file of a session against the session's project
and aggregate into one verdict.

The session is flagged as a duplicate if any of its files duplicates an
existing script. A session without a project scope reports no duplicates
and records nothing, since there is no corpus to compare against.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := detector.CheckSession(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printResult(result)
	},
}

func init() {
	rootCmd.AddCommand(checkSessionCmd)
}
