package main

import (
	"chatbot-lab/auth"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func TokenCmd(config *Config) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the chatbot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := auth.NewTokenManager(config.AuthSecret)
			if !tokens.Enabled() {
				return fmt.Errorf("set CHATCTL_AUTH_SECRET or --secret to the server AUTH_SECRET")
			}
			token, err := tokens.Generate(subject, []string{"chat"}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&config.AuthSecret, "secret", config.AuthSecret, "Signing secret shared with the server")
	cmd.Flags().StringVar(&subject, "subject", "chatctl", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
