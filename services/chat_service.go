//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chatbot-lab/domain"
	"chatbot-lab/errors"
	"chatbot-lab/search"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// DefaultMaxMessageLength bounds a user message, in runes.
const DefaultMaxMessageLength = 500

type IChatService interface {
	Ask(ctx context.Context, text string) (Reply, error)
	Suggest(ctx context.Context, text string, limit int) ([]search.Suggestion, error)
}

// Classifier is the read-only inference context the service answers with.
type Classifier interface {
	Classify(text string) []domain.Candidate
	Respond(candidates []domain.Candidate) string
}

// Censor masks blocked words and reports what it found.
type Censor interface {
	Censor(text string) (string, []string)
}

// Suggester finds known patterns close to a message.
type Suggester interface {
	Suggest(ctx context.Context, text string, limit int) ([]search.Suggestion, error)
}

// Reply is the answer to one message. Turn.User holds the censored message.
type Reply struct {
	Turn       domain.Turn
	Candidates []domain.Candidate
	Language   string
}

type ChatService struct {
	log              *slog.Logger
	classifier       Classifier
	censor           Censor
	suggester        Suggester
	maxMessageLength int
}

func NewChatService(log *slog.Logger, classifier Classifier, censor Censor, suggester Suggester, maxMessageLength int) *ChatService {
	if maxMessageLength <= 0 {
		maxMessageLength = DefaultMaxMessageLength
	}
	return &ChatService{
		log:              log,
		classifier:       classifier,
		censor:           censor,
		suggester:        suggester,
		maxMessageLength: maxMessageLength,
	}
}

// Ask classifies one message and picks a response.
// Classification runs on the raw message, moderation only affects what is logged and echoed.
func (s *ChatService) Ask(ctx context.Context, text string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, errors.ErrEmptyMessage
	}
	if length := utf8.RuneCountInString(text); length > s.maxMessageLength {
		return Reply{}, fmt.Errorf("%w: %d runes, at most %d allowed", errors.ErrMessageTooLong, length, s.maxMessageLength)
	}

	censored, blocked := s.censor.Censor(text)
	candidates := s.classifier.Classify(text)
	reply := Reply{
		Turn:       domain.Turn{User: censored, Bot: s.classifier.Respond(candidates)},
		Candidates: candidates,
		Language:   detectLanguage(text),
	}

	s.log.Debug("Message answered",
		"message", censored,
		"blocked_words", len(blocked),
		"candidates", len(candidates),
		"language", reply.Language)
	return reply, nil
}

func (s *ChatService) Suggest(ctx context.Context, text string, limit int) ([]search.Suggestion, error) {
	return s.suggester.Suggest(ctx, strings.TrimSpace(text), limit)
}

// detectLanguage returns the ISO 639-3 code of text, or an empty string when the guess is unreliable.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
