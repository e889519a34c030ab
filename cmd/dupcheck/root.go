package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/testforge/dupcheck/internal/dedup"
	"github.com/testforge/dupcheck/internal/storage"
)

var (
	dbPath     string
	configPath string

	store    storage.Storage
	detector *dedup.ContentDetector
)

var rootCmd = &cobra.Command{
	Use:   "dupcheck",
	Short: "Duplicate content detection for test cases and scripts",
	Long: `dupcheck checks test cases, automation scripts, and generated sessions
against a project's existing corpus for exact and near-duplicate content.

Every check is persisted as an immutable audit record; use 'history' and
'show' to inspect past verdicts. Use 'seed' to load corpus content when
running against a local database.

Configuration comes from DUPCHECK_* environment variables or a YAML file
passed with --config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadEngineConfig()
		if err != nil {
			return err
		}

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{Path: dbPath})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		detector, err = dedup.NewDetector(store, cfg)
		if err != nil {
			_ = store.Close()
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func loadEngineConfig() (dedup.Config, error) {
	if configPath != "" {
		return dedup.LoadConfigFile(configPath)
	}
	return dedup.ConfigFromEnv()
}

func init() {
	defaultDB := os.Getenv("DUPCHECK_DB")
	if defaultDB == "" {
		defaultDB = storage.DefaultConfig().Path
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides environment)")
}
