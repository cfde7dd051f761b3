package ai

import (
	"chatbot-lab/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	vocabulary := domain.BuildVocabulary([]string{"are", "hello", "hi", "how", "you"})

	tests := []struct {
		name     string
		tokens   []string
		expected domain.FeatureVector
	}{
		{"Presence only", []string{"hello", "you"}, domain.FeatureVector{0, 1, 0, 0, 1}},
		{"Repetitions count once", []string{"hi", "hi", "hi"}, domain.FeatureVector{0, 0, 1, 0, 0}},
		{"Order is irrelevant", []string{"you", "are", "how"}, domain.FeatureVector{1, 0, 0, 1, 1}},
		{"Unknown tokens are ignored", []string{"quantum", "!", "hello"}, domain.FeatureVector{0, 1, 0, 0, 0}},
		{"No tokens", nil, domain.FeatureVector{0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.expected, Encode(tt.tokens, vocabulary))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	req := require.New(t)
	vocabulary := domain.BuildVocabulary([]string{"b", "a", "c"})
	tokens := []string{"c", "x", "a"}

	first := Encode(tokens, vocabulary)
	for i := 0; i < 5; i++ {
		req.Equal(first, Encode(tokens, vocabulary))
	}
}

func TestEncode_PunctuationIsNoOp(t *testing.T) {
	req := require.New(t)
	// Punctuation never enters a vocabulary, so extra "!" tokens set no bit
	vocabulary := domain.BuildVocabulary([]string{"hello", "there"})

	req.Equal(
		Encode([]string{"hello"}, vocabulary),
		Encode([]string{"hello", "!", "!", "!"}, vocabulary),
	)
}

func TestDataset_Validate(t *testing.T) {
	req := require.New(t)

	var data Dataset
	data.Append([]float64{1, 0}, OneHot(1, 3))
	data.Append([]float64{0, 1}, OneHot(0, 3))
	req.NoError(data.Validate(2, 3))
	req.Equal(2, data.Len())

	data.Append([]float64{1, 1}, []float64{1, 1, 0})
	req.Error(data.Validate(2, 3))

	other := Dataset{X: [][]float64{{1}}, Y: [][]float64{{1}}}
	req.Error(other.Validate(2, 1))
}
