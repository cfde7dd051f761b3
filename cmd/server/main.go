package main

import (
	"chatbot-lab/auth"
	"chatbot-lab/infrastructure/grpc/chatbotpb"
	"chatbot-lab/infrastructure/grpc/server"
	"chatbot-lab/inference"
	"chatbot-lab/internal"
	"chatbot-lab/moderation"
	"chatbot-lab/nlp"
	"chatbot-lab/repositories"
	"chatbot-lab/search"
	"chatbot-lab/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run builds the inference context once from the stored training run, then serves it.
// Any failure while loading artifacts aborts startup.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	var pinnedRun *uuid.UUID
	if config.RunID != "" {
		id, err := uuid.Parse(config.RunID)
		if err != nil {
			return exitConfig, fmt.Errorf("RUN_ID is not a valid uuid: %w", err)
		}
		pinnedRun = &id
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Artifacts
	bundle, err := loadBundle(ctx, config, logger, pinnedRun)
	if err != nil {
		return exitRuntime, err
	}

	// 3. Inference context
	normalizer, err := nlp.NewEnglishNormalizer()
	if err != nil {
		return exitRuntime, err
	}
	engine, err := inference.NewEngine(bundle, normalizer)
	if err != nil {
		return exitRuntime, err
	}
	index, err := search.NewPatternIndex(bundle.Corpus, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = index.Close() }()
	moderator, err := moderation.NewModerator(config.BlockedWordList(), charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}
	chatService := services.NewChatService(logger, engine, moderator, index, config.MaxMessageLength)

	logger.Info("Inference context ready",
		"run_id", bundle.Manifest.RunID,
		"trained_at", bundle.Manifest.TrainedAt,
		"vocabulary", bundle.Vocabulary.Len(),
		"labels", bundle.Labels.Len())

	// 4. gRPC Server Setup
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	tokens := auth.NewTokenManager(config.AuthSecret)
	if !tokens.Enabled() {
		logger.Warn("AUTH_SECRET is empty, requests are not authenticated")
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(logger),
			auth.UnaryInterceptor(tokens),
		))
	chatbotpb.RegisterChatbotServiceServer(s, server.NewChatbotServer(logger, chatService, config.SuggestionLimit))

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 6. Graceful Shutdown, bounded by SHUTDOWN_TIMEOUT
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(config.ShutdownTimeout):
		logger.Warn("Graceful stop timed out, forcing")
		s.Stop()
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

// loadBundle reads one training run and releases the database right away:
// serving never writes and everything it needs is kept in memory.
func loadBundle(ctx context.Context, config internal.Config, logger *slog.Logger, runID *uuid.UUID) (repositories.Bundle, error) {
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return repositories.Bundle{}, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	repository := repositories.NewArtifactRepository(db, logger)
	if runID != nil {
		return repository.Load(*runID)
	}
	return repository.LoadCurrent()
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath).WithReadOnly(true)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
