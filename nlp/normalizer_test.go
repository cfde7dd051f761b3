package nlp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type suffixLemmatizer struct{}

// Lemma strips a plural "s", enough to observe that lemmas are applied after folding.
func (suffixLemmatizer) Lemma(word string) string {
	if len(word) > 3 && word[len(word)-1] == 's' {
		return word[:len(word)-1]
	}
	return word
}

func TestNormalizer_Normalize(t *testing.T) {
	normalizer := NewNormalizer(suffixLemmatizer{}, "test", DefaultIgnoredTokens)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Case folding", "Hello THERE", []string{"hello", "there"}},
		{"Punctuation is split off", "hello!!!", []string{"hello", "!", "!", "!"}},
		{"Lemmas are applied", "Cats and dogs", []string{"cat", "and", "dog"}},
		{"Question mark and comma", "Hi, how are you?", []string{"hi", ",", "how", "are", "you", "?"}},
		{"Only whitespace", "   \t\n", nil},
		{"Empty string", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.expected, normalizer.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Deterministic(t *testing.T) {
	req := require.New(t)
	normalizer := NewNormalizer(suffixLemmatizer{}, "test", DefaultIgnoredTokens)

	input := "Is anyone there? I need help with my orders."
	first := normalizer.Normalize(input)
	for i := 0; i < 10; i++ {
		req.Equal(first, normalizer.Normalize(input))
	}
}

func TestNormalizer_WordTokens(t *testing.T) {
	req := require.New(t)
	normalizer := NewNormalizer(IdentityLemmatizer{}, "test", DefaultIgnoredTokens)

	tokens := normalizer.Normalize("Hello, world! Anyone there?")

	req.Equal([]string{"hello", "world", "anyone", "there"}, normalizer.WordTokens(tokens))
	req.True(normalizer.IsIgnored("?"))
	req.False(normalizer.IsIgnored("-"))
}

func TestNewEnglishNormalizer(t *testing.T) {
	req := require.New(t)

	normalizer, err := NewEnglishNormalizer()
	req.NoError(err)
	req.Equal(EnglishResourceVersion, normalizer.ResourceVersion())

	// Then plural nouns are reduced to their base form
	req.Equal([]string{"hello"}, normalizer.Normalize("Hello"))
	req.Contains(normalizer.Normalize("cats"), "cat")
}
