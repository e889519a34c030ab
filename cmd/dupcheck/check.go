package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/testforge/dupcheck/internal/normalize"
)

var (
	checkProject     string
	checkExclude     string
	checkTitle       string
	checkDescription string
	checkSteps       string
	checkExpected    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a test case for duplicates",
	Long: `Check a test case against the project's stored test cases.

The title, description, steps, and expected result are normalized and
compared; field order and formatting do not affect the outcome. Pass
--exclude with the test case's own id when re-checking an edit so the
item never matches itself.

Example:
  dupcheck check --project proj-1 \
    --title "Test user login" \
    --description "Verify login works"`,
	Run: func(cmd *cobra.Command, args []string) {
		input := normalize.TestCaseInput{
			Title:          checkTitle,
			Description:    checkDescription,
			Steps:          checkSteps,
			ExpectedResult: checkExpected,
		}

		result, err := detector.CheckTestCase(cmd.Context(), input, checkProject, checkExclude)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printResult(result)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkProject, "project", "", "Project id scoping the corpus (required)")
	checkCmd.Flags().StringVar(&checkExclude, "exclude", "", "Test case id to exclude (when re-checking an edit)")
	checkCmd.Flags().StringVar(&checkTitle, "title", "", "Test case title")
	checkCmd.Flags().StringVar(&checkDescription, "description", "", "Test case description")
	checkCmd.Flags().StringVar(&checkSteps, "steps", "", "Serialized test steps")
	checkCmd.Flags().StringVar(&checkExpected, "expected", "", "Expected result")
	_ = checkCmd.MarkFlagRequired("project")
}
