package main

import (
	"chatbot-lab/corpus"
	"chatbot-lab/nlp"
	"chatbot-lab/repositories"
	"chatbot-lab/training"
	"fmt"
	"io"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

func TrainCmd(config *Config) *cobra.Command {
	var (
		corpusPath string
		seed       uint64
		epochs     int
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from an intents corpus and store it as the current run",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logs.GetLoggerFromString(config.LogLevel)

			c, err := corpus.Load(corpusPath)
			if err != nil {
				return err
			}
			normalizer, err := nlp.NewEnglishNormalizer()
			if err != nil {
				return err
			}

			db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
			if err != nil {
				return fmt.Errorf("database opening failed: %w", err)
			}
			defer func() { _ = db.Close() }()

			options := training.DefaultOptions()
			if cmd.Flags().Changed("seed") {
				options.Seed = &seed
			}
			if epochs > 0 {
				options.Fit.Epochs = epochs
			}
			trainer := training.NewTrainer(log, normalizer, repositories.NewArtifactRepository(db, log), options)

			report, err := trainer.Train(cmd.Context(), c)
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "Path to the intents corpus (JSON or YAML)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible training")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "Override the number of epochs")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func renderReport(w io.Writer, report training.Report) {
	table := newTable(w, "Field", "Value")
	table.Append([]string{"Run", report.Manifest.RunID.String()})
	table.Append([]string{"Trained at", report.Manifest.TrainedAt.Format("2006-01-02 15:04:05 MST")})
	table.Append([]string{"Lexical resource", report.Manifest.ResourceVersion})
	table.Append([]string{"Vocabulary", strconv.Itoa(report.Manifest.VocabularySize)})
	table.Append([]string{"Labels", strconv.Itoa(report.Manifest.LabelCount)})
	table.Append([]string{"Patterns", strconv.Itoa(report.Manifest.PatternCount)})
	table.Append([]string{"Skipped", strconv.Itoa(report.Manifest.SkippedCount)})
	if last, ok := report.FinalEpoch(); ok {
		table.Append([]string{"Final loss", strconv.FormatFloat(last.Loss, 'f', 4, 64)})
		table.Append([]string{"Final accuracy", strconv.FormatFloat(last.Accuracy, 'f', 4, 64)})
	}
	table.Append([]string{"Duration", report.Duration.String()})
	table.Append([]string{"RSS (MB)", strconv.FormatUint(report.Usage.RSS/1024/1024, 10)})
	table.Render()

	skipped := report.Skipped()
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintln(w)
	table = newTable(w, "Tag", "Pattern", "Reason")
	for _, result := range skipped {
		table.Append([]string{result.Tag, strconv.Quote(result.Pattern), result.Reason})
	}
	table.Render()
}
