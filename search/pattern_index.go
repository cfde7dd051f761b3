package search

import (
	"chatbot-lab/domain"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	fieldTag     = "tag"
	fieldPattern = "pattern"
)

// DefaultSuggestionLimit is used when callers ask for a non-positive number of suggestions.
const DefaultSuggestionLimit = 3

// Suggestion is a known pattern close to the user's text.
type Suggestion struct {
	Tag     string
	Pattern string
	Score   float64
}

// PatternIndex is an in-memory full-text index over the training patterns.
// It is built once and only read afterwards.
type PatternIndex struct {
	writer *bluge.Writer
	reader *bluge.Reader
	log    *slog.Logger
}

// NewPatternIndex indexes every pattern of the corpus, keyed by tag and position.
func NewPatternIndex(corpus domain.Corpus, log *slog.Logger) (*PatternIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening pattern index: %w", err)
	}

	batch := bluge.NewBatch()
	count := 0
	for i, intent := range corpus.Intents {
		for j, pattern := range intent.Patterns {
			if strings.TrimSpace(pattern) == "" {
				continue
			}
			doc := bluge.NewDocument(fmt.Sprintf("%d:%d", i, j))
			doc.AddField(bluge.NewKeywordField(fieldTag, intent.Tag).StoreValue())
			doc.AddField(bluge.NewTextField(fieldPattern, pattern).StoreValue())
			batch.Update(doc.ID(), doc)
			count++
		}
	}
	if err := writer.Batch(batch); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("indexing patterns: %w", err)
	}

	reader, err := writer.Reader()
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("opening pattern reader: %w", err)
	}
	log.Debug("Pattern index built", "patterns", count)
	return &PatternIndex{writer: writer, reader: reader, log: log}, nil
}

// Suggest returns up to limit patterns matching text, best score first.
// Matching tolerates one edit per term so small typos still find their pattern.
func (p *PatternIndex) Suggest(ctx context.Context, text string, limit int) ([]Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	query := bluge.NewMatchQuery(text).SetField(fieldPattern).SetFuzziness(1)
	request := bluge.NewTopNSearch(limit, query)
	matches, err := p.reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("searching patterns: %w", err)
	}

	var suggestions []Suggestion
	next, err := matches.Next()
	for err == nil && next != nil {
		suggestion := Suggestion{Score: next.Score}
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldTag:
				suggestion.Tag = string(value)
			case fieldPattern:
				suggestion.Pattern = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, fmt.Errorf("reading suggestion: %w", visitErr)
		}
		suggestions = append(suggestions, suggestion)
		next, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterating suggestions: %w", err)
	}
	return suggestions, nil
}

func (p *PatternIndex) Close() error {
	if err := p.reader.Close(); err != nil {
		return err
	}
	return p.writer.Close()
}
