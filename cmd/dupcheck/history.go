package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <project-id>",
	Short: "List a project's duplicate check history",
	Long: `List a project's duplicate check audit records, most recent first.

Each line shows the check id, when it ran, the source kind, and the
verdict. Use 'show' with a check id for the full record.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checks, err := detector.ListChecks(cmd.Context(), args[0], historyLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(checks) == 0 {
			fmt.Printf("No checks recorded for project %s\n", args[0])
			return
		}

		for _, check := range checks {
			verdict := green("unique")
			if check.IsDuplicate {
				verdict = red("duplicate")
			} else if check.Confidence > 0 {
				verdict = yellow("similar")
			}
			fmt.Printf("%s  %s  %-9s  %-10s  confidence %3d  %s\n",
				gray(check.CheckedAt.Format("2006-01-02 15:04:05")),
				cyan(check.ID),
				check.SourceType,
				verdict,
				check.Confidence,
				check.MatchType)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum records to list")
}
