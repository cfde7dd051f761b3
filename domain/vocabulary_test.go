package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildVocabulary_SortedAndUnique(t *testing.T) {
	req := require.New(t)

	// Given tokens with duplicates in encounter order
	tokens := []string{"hi", "hello", "there", "hi", "are", "hello"}

	// When building twice
	first := BuildVocabulary(tokens)
	second := BuildVocabulary(tokens)

	// Then the order is lexicographic and stable
	req.Equal([]string{"are", "hello", "hi", "there"}, first.Words())
	req.Equal(first.Words(), second.Words())
	idx, ok := first.Index("hi")
	req.True(ok)
	req.Equal(2, idx)
	_, ok = first.Index("unknown")
	req.False(ok)
}

func TestNewVocabulary_KeepsPersistedOrder(t *testing.T) {
	req := require.New(t)

	vocabulary, err := NewVocabulary([]string{"zebra", "apple"})
	req.NoError(err)
	req.Equal([]string{"zebra", "apple"}, vocabulary.Words())
	req.Equal("apple", vocabulary.At(1))

	_, err = NewVocabulary([]string{"apple", "apple"})
	req.Error(err)
}

func TestBuildLabelSet(t *testing.T) {
	req := require.New(t)

	labels := BuildLabelSet([]string{"greeting", "goodbye", "greeting", "thanks"})

	req.Equal([]string{"goodbye", "greeting", "thanks"}, labels.Tags())
	req.Equal(3, labels.Len())

	_, err := NewLabelSet([]string{"a", "b", "a"})
	req.Error(err)
}

func TestVocabulary_ItemsAreCopies(t *testing.T) {
	req := require.New(t)
	vocabulary := BuildVocabulary([]string{"b", "a"})

	words := vocabulary.Words()
	words[0] = "mutated"

	req.Equal("a", vocabulary.At(0))
}

func TestCorpus_Responses(t *testing.T) {
	req := require.New(t)
	corpus := Corpus{Intents: []Intent{
		{Tag: "greeting", Patterns: []string{"hi"}, Responses: []string{"Hello!"}},
		{Tag: "greeting", Patterns: []string{"hey"}, Responses: []string{"Second"}},
	}}

	responses, ok := corpus.Responses("greeting")
	req.True(ok)
	req.Equal([]string{"Hello!"}, responses)

	_, ok = corpus.Responses("missing")
	req.False(ok)
	req.Equal(2, corpus.PatternCount())
}

func TestFeatureVector_IsZero(t *testing.T) {
	req := require.New(t)
	req.True(FeatureVector{0, 0}.IsZero())
	req.True(FeatureVector{}.IsZero())
	req.False(FeatureVector{0, 1}.IsZero())
}
