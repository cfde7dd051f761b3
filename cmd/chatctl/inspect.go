package main

import (
	"chatbot-lab/repositories"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

func InspectCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List stored training runs, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logs.GetLoggerFromString(config.LogLevel)
			db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
				WithReadOnly(true).
				WithLoggingLevel(badger.WARNING))
			if err != nil {
				return fmt.Errorf("database opening failed: %w", err)
			}
			defer func() { _ = db.Close() }()

			manifests, err := repositories.NewArtifactRepository(db, log).ListRuns()
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "Run", "Trained at", "Vocabulary", "Labels", "Patterns", "Skipped")
			for _, m := range manifests {
				table.Append([]string{
					m.RunID.String(),
					m.TrainedAt.Format("2006-01-02 15:04:05"),
					strconv.Itoa(m.VocabularySize),
					strconv.Itoa(m.LabelCount),
					strconv.Itoa(m.PatternCount),
					strconv.Itoa(m.SkippedCount),
				})
			}
			table.Render()
			return nil
		},
	}
}
