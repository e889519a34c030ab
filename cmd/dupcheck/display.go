package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/testforge/dupcheck/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// printResult renders a check verdict for terminal use.
func printResult(result *types.DuplicateResult) {
	switch {
	case result.IsDuplicate:
		fmt.Printf("\n%s Duplicate detected (%s, confidence %d)\n",
			red("✗"), result.MatchType, result.Confidence)
	case result.Confidence > 0:
		fmt.Printf("\n%s Similar content found (%s, confidence %d)\n",
			yellow("!"), result.MatchType, result.Confidence)
	default:
		fmt.Printf("\n%s No duplicates found\n", green("✓"))
	}

	fmt.Printf("  %s\n", result.Recommendation)

	if len(result.SimilarItems) > 0 {
		fmt.Println()
		for _, item := range result.SimilarItems {
			name := item.Candidate.DisplayName
			if name == "" {
				name = item.Candidate.ID
			}
			fmt.Printf("  %3d%%  %s %s\n", item.Similarity, cyan(name), gray(item.Candidate.ID))
		}
	}

	if result.CheckID != "" {
		fmt.Printf("\n  Check ID: %s\n", gray(result.CheckID))
	}
	fmt.Println()
}
