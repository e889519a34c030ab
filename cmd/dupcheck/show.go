package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/testforge/dupcheck/internal/types"
)

var showCmd = &cobra.Command{
	Use:   "show <check-id>",
	Short: "Show a recorded duplicate check",
	Long: `Show the full audit record of a past duplicate check, including the
ranked similar items captured at check time.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		check, err := detector.GetCheck(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		verdict := green("not a duplicate")
		if check.IsDuplicate {
			verdict = red("duplicate")
		}

		fmt.Printf("\nCheck %s\n\n", cyan(check.ID))
		fmt.Printf("  Project:    %s\n", check.ProjectID)
		fmt.Printf("  Source:     %s", check.SourceType)
		if check.SourceID != "" {
			fmt.Printf(" (%s)", check.SourceID)
		}
		fmt.Println()
		fmt.Printf("  Checked at: %s\n", check.CheckedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("  Verdict:    %s (%s, confidence %d)\n", verdict, check.MatchType, check.Confidence)

		var items []types.SimilarityResult
		if err := json.Unmarshal([]byte(check.SimilarItems), &items); err != nil {
			fmt.Fprintf(os.Stderr, "Error: corrupt similar_items payload: %v\n", err)
			os.Exit(1)
		}
		if len(items) > 0 {
			fmt.Println("\n  Similar items:")
			for _, item := range items {
				name := item.Candidate.DisplayName
				if name == "" {
					name = item.Candidate.ID
				}
				fmt.Printf("    %3d%%  %s %s\n", item.Similarity, name, gray(item.Candidate.ID))
			}
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
