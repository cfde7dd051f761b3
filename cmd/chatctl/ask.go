package main

import (
	"chatbot-lab/inference"
	"chatbot-lab/nlp"
	"chatbot-lab/repositories"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

func AskCmd(config *Config) *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Classify one message against a stored run, without a server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logs.GetLoggerFromString(config.LogLevel)

			db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
				WithReadOnly(true).
				WithLoggingLevel(badger.WARNING))
			if err != nil {
				return fmt.Errorf("database opening failed: %w", err)
			}
			repository := repositories.NewArtifactRepository(db, log)
			var bundle repositories.Bundle
			if runID != "" {
				id, parseErr := uuid.Parse(runID)
				if parseErr != nil {
					_ = db.Close()
					return fmt.Errorf("invalid run id: %w", parseErr)
				}
				bundle, err = repository.Load(id)
			} else {
				bundle, err = repository.LoadCurrent()
			}
			_ = db.Close()
			if err != nil {
				return err
			}

			normalizer, err := nlp.NewEnglishNormalizer()
			if err != nil {
				return err
			}
			engine, err := inference.NewEngine(bundle, normalizer)
			if err != nil {
				return err
			}

			message := strings.Join(args, " ")
			candidates := engine.Classify(message)
			out := cmd.OutOrStdout()
			if len(candidates) > 0 {
				table := newTable(out, "Tag", "Probability")
				for _, c := range candidates {
					table.Append([]string{c.Tag, strconv.FormatFloat(c.Probability, 'f', 4, 64)})
				}
				table.Render()
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, engine.Respond(candidates))
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Training run to use instead of the current one")
	return cmd
}
