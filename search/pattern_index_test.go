package search

import (
	"chatbot-lab/domain"
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *PatternIndex {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	corpus := domain.Corpus{Intents: []domain.Intent{
		{Tag: "greeting", Patterns: []string{"Hello there", "Good morning"}, Responses: []string{"Hi"}},
		{Tag: "hours", Patterns: []string{"What are your opening hours", "When do you open"}, Responses: []string{"9 to 5"}},
		{Tag: "goodbye", Patterns: []string{"Bye", "See you later"}, Responses: []string{"Bye"}},
	}}
	index, err := NewPatternIndex(corpus, log)
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestPatternIndex_Suggest(t *testing.T) {
	index := newTestIndex(t)

	tests := []struct {
		name    string
		text    string
		limit   int
		wantTag string
	}{
		{name: "Exact word", text: "hello", limit: 1, wantTag: "greeting"},
		{name: "Typo within one edit", text: "openning hours", limit: 2, wantTag: "hours"},
		{name: "Case insensitive", text: "SEE YOU", limit: 5, wantTag: "goodbye"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			suggestions, err := index.Suggest(context.Background(), tt.text, tt.limit)

			req.NoError(err)
			req.NotEmpty(suggestions)
			req.LessOrEqual(len(suggestions), tt.limit)
			req.Equal(tt.wantTag, suggestions[0].Tag)
			req.NotEmpty(suggestions[0].Pattern)
		})
	}
}

func TestPatternIndex_Suggest_OrderedByScore(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	suggestions, err := index.Suggest(context.Background(), "you open", 0)

	req.NoError(err)
	req.LessOrEqual(len(suggestions), DefaultSuggestionLimit)
	scores := lo.Map(suggestions, func(s Suggestion, _ int) float64 { return s.Score })
	for i := 1; i < len(scores); i++ {
		req.GreaterOrEqual(scores[i-1], scores[i])
	}
}

func TestPatternIndex_Suggest_NoMatch(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	suggestions, err := index.Suggest(context.Background(), "   ", 3)
	req.NoError(err)
	req.Empty(suggestions)

	suggestions, err = index.Suggest(context.Background(), "zzzzzzzz", 3)
	req.NoError(err)
	req.Empty(suggestions)
}
