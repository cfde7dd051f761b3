package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	config, err := LoadConfig()
	rootCmd := &cobra.Command{
		Use:           "chatctl",
		Short:         "Train, inspect and talk to the intent chatbot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&config.BadgerFilepath, "db", config.BadgerFilepath, "Path to the artifact store")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "DEBUG, INFO, WARN or ERROR")

	rootCmd.AddCommand(
		TrainCmd(&config),
		AskCmd(&config),
		ChatCmd(&config),
		InspectCmd(&config),
		TokenCmd(&config),
		VersionCmd(),
	)
	return rootCmd
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the chatctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
