package main

import (
	"chatbot-lab/infrastructure/grpc/client"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	suggestCommand = "/suggest "
	quitCommand    = "/quit"
)

func ChatCmd(config *Config) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a running chatbot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := grpc.NewClient(config.ServerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", config.ServerAddr, err)
			}
			defer func() { _ = conn.Close() }()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "you> ",
				InterruptPrompt: "^C",
				EOFPrompt:       quitCommand,
			})
			if err != nil {
				return err
			}
			defer func() { _ = rl.Close() }()

			session := chatSession{
				client:  client.NewChatbotClient(conn, config.Token),
				out:     rl.Stdout(),
				colours: config.Colours,
				timeout: timeout,
			}
			session.println(color.FgGray, "Connected to "+config.ServerAddr+", type /quit to leave, /suggest <text> for examples.")
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if !session.handle(cmd.Context(), line) {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&config.ServerAddr, "addr", config.ServerAddr, "Chatbot server address")
	cmd.Flags().StringVar(&config.Token, "token", config.Token, "Bearer token when the server requires one")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Per message timeout")
	return cmd
}

type chatSession struct {
	client  *client.ChatbotClient
	out     io.Writer
	colours bool
	timeout time.Duration
}

// handle answers one input line and reports whether the session goes on.
func (s chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case line == quitCommand:
		return false
	case strings.HasPrefix(line, suggestCommand):
		s.suggest(ctx, strings.TrimPrefix(line, suggestCommand))
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.client.Ask(ctx, line)
	if err != nil {
		s.println(color.FgRed, "error: "+status.Convert(err).Message())
		return true
	}
	s.println(color.FgGreen, "bot> "+reply.Turn.Bot)
	if len(reply.Candidates) == 0 {
		s.suggest(ctx, line)
	}
	return true
}

func (s chatSession) suggest(ctx context.Context, text string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	suggestions, err := s.client.Suggest(ctx, text, 0)
	if err != nil {
		s.println(color.FgRed, "error: "+status.Convert(err).Message())
		return
	}
	for _, suggestion := range suggestions {
		s.println(color.FgCyan, fmt.Sprintf("  did you mean %q (%s)?", suggestion.Pattern, suggestion.Tag))
	}
}

func (s chatSession) println(c color.Color, text string) {
	if s.colours {
		text = c.Render(text)
	}
	fmt.Fprintln(s.out, text)
}
