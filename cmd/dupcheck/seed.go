package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/testforge/dupcheck/internal/types"
)

var (
	seedID      string
	seedProject string

	seedTitle       string
	seedDescription string
	seedSteps       string
	seedExpected    string

	seedScriptName string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load corpus content into the local database",
	Long: `Load test cases, scripts, or generation sessions into the local
database so checks have a corpus to compare against.

In production the corpus is kept in sync by the platform; seeding exists
for local use and experimentation.`,
}

var seedTestCaseCmd = &cobra.Command{
	Use:   "test-case",
	Short: "Seed a test case",
	Run: func(cmd *cobra.Command, args []string) {
		if seedProject == "" {
			fmt.Fprintf(os.Stderr, "Error: --project is required\n")
			os.Exit(1)
		}
		id := seedID
		if id == "" {
			id = uuid.NewString()
		}
		err := store.PutTestCase(cmd.Context(), &types.TestCase{
			ID:             id,
			ProjectID:      seedProject,
			Title:          seedTitle,
			Description:    seedDescription,
			Steps:          seedSteps,
			ExpectedResult: seedExpected,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Seeded test case %s\n", green("✓"), cyan(id))
	},
}

var seedScriptCmd = &cobra.Command{
	Use:   "script <file>",
	Short: "Seed a script from a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if seedProject == "" {
			fmt.Fprintf(os.Stderr, "Error: --project is required\n")
			os.Exit(1)
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read script: %v\n", err)
			os.Exit(1)
		}

		id := seedID
		if id == "" {
			id = uuid.NewString()
		}
		name := seedScriptName
		if name == "" {
			name = filepath.Base(args[0])
		}

		err = store.PutScript(cmd.Context(), &types.Script{
			ID:        id,
			ProjectID: seedProject,
			Name:      name,
			Path:      args[0],
			Content:   string(content),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Seeded script %s as %s\n", green("✓"), args[0], cyan(id))
	},
}

var seedSessionCmd = &cobra.Command{
	Use:   "session <file>...",
	Short: "Seed a generation session from files",
	Long: `Seed a generation session whose generated files are read from disk.

Omit --project to create an unscoped session; checking one reports no
duplicates since there is no corpus to compare against.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := seedID
		if id == "" {
			id = uuid.NewString()
		}

		files := make([]types.SessionFile, 0, len(args))
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", path, err)
				os.Exit(1)
			}
			files = append(files, types.SessionFile{Path: path, Content: string(content)})
		}

		session := &types.GenerationSession{ID: id, Files: files}
		if seedProject != "" {
			session.ProjectID = &seedProject
		}

		if err := store.PutSession(cmd.Context(), session); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Seeded session %s with %d file(s)\n", green("✓"), cyan(id), len(files))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedTestCaseCmd)
	seedCmd.AddCommand(seedScriptCmd)
	seedCmd.AddCommand(seedSessionCmd)

	seedCmd.PersistentFlags().StringVar(&seedID, "id", "", "Item id (generated when omitted)")
	seedCmd.PersistentFlags().StringVar(&seedProject, "project", "", "Project id")

	seedTestCaseCmd.Flags().StringVar(&seedTitle, "title", "", "Test case title")
	seedTestCaseCmd.Flags().StringVar(&seedDescription, "description", "", "Test case description")
	seedTestCaseCmd.Flags().StringVar(&seedSteps, "steps", "", "Serialized test steps")
	seedTestCaseCmd.Flags().StringVar(&seedExpected, "expected", "", "Expected result")
	_ = seedTestCaseCmd.MarkFlagRequired("title")

	seedScriptCmd.Flags().StringVar(&seedScriptName, "name", "", "Script name (defaults to the file name)")
}
