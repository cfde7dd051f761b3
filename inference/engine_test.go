package inference_test

import (
	"chatbot-lab/ai"
	"chatbot-lab/corpus"
	"chatbot-lab/domain"
	"chatbot-lab/errors"
	"chatbot-lab/inference"
	"chatbot-lab/nlp"
	"chatbot-lab/repositories"
	"chatbot-lab/training"
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testVersion = "identity@test"

func testNormalizer() *nlp.Normalizer {
	return nlp.NewNormalizer(nlp.IdentityLemmatizer{}, testVersion, nlp.DefaultIgnoredTokens)
}

// softmaxOnly builds a single softmax layer whose logits are weights·x.
func softmaxOnly(weights [][]float64) *ai.Network {
	return &ai.Network{Layers: []ai.Layer{{
		Weights:    weights,
		Bias:       make([]float64, len(weights)),
		Activation: ai.Softmax,
	}}}
}

func newBundle(t *testing.T, words, tags []string, weights [][]float64, intents []domain.Intent) repositories.Bundle {
	req := require.New(t)
	vocabulary, err := domain.NewVocabulary(words)
	req.NoError(err)
	labels, err := domain.NewLabelSet(tags)
	req.NoError(err)
	return repositories.Bundle{
		Manifest:   domain.Manifest{ResourceVersion: testVersion},
		Vocabulary: vocabulary,
		Labels:     labels,
		Model:      softmaxOnly(weights),
		Corpus:     domain.Corpus{Intents: intents},
	}
}

func greetingBundle(t *testing.T) repositories.Bundle {
	return newBundle(t,
		[]string{"bye", "hello"},
		[]string{"goodbye", "greeting"},
		[][]float64{{5, 0}, {0, 5}},
		[]domain.Intent{
			{Tag: "greeting", Patterns: []string{"Hello"}, Responses: []string{"Hi!", "Hello there", "Hey"}},
			{Tag: "goodbye", Patterns: []string{"Bye"}, Responses: []string{"See you"}},
		})
}

func TestEngine_Classify_returns_confident_label(t *testing.T) {
	req := require.New(t)
	engine, err := inference.NewEngine(greetingBundle(t), testNormalizer())
	req.NoError(err)

	candidates := engine.Classify("HELLO!!")

	req.Len(candidates, 1)
	req.Equal("greeting", candidates[0].Tag)
	req.InDelta(1/(1+math.Exp(-5)), candidates[0].Probability, 1e-9)
}

func TestEngine_Classify_unknown_words_fall_back(t *testing.T) {
	req := require.New(t)
	engine, err := inference.NewEngine(greetingBundle(t), testNormalizer())
	req.NoError(err)

	// Given a message sharing no word with the vocabulary
	candidates := engine.Classify("xyzzy plugh")

	// Then there is no candidate and the fallback is answered
	req.Empty(candidates)
	req.Equal(inference.FallbackResponse, engine.Respond(candidates))
	req.Equal(inference.FallbackResponse, engine.ClassifyAndRespond(""))
}

func TestEngine_Classify_threshold_is_strict(t *testing.T) {
	req := require.New(t)

	// Given four labels with identical logits, each gets exactly 0.25
	bundle := newBundle(t,
		[]string{"word"},
		[]string{"a", "b", "c", "d"},
		[][]float64{{0}, {0}, {0}, {0}},
		[]domain.Intent{{Tag: "a", Patterns: []string{"word"}, Responses: []string{"A"}}})
	engine, err := inference.NewEngine(bundle, testNormalizer())
	req.NoError(err)

	// Then none of them is kept
	req.Empty(engine.Classify("word"))
	req.Equal(inference.FallbackResponse, engine.ClassifyAndRespond("word"))
}

func TestEngine_Classify_sorts_descending_and_keeps_ties_stable(t *testing.T) {
	req := require.New(t)

	// Given logits ln2, 0, ln2 -> probabilities 0.4, 0.2, 0.4
	bundle := newBundle(t,
		[]string{"word"},
		[]string{"a", "b", "c"},
		[][]float64{{math.Ln2}, {0}, {math.Ln2}},
		nil)
	engine, err := inference.NewEngine(bundle, testNormalizer())
	req.NoError(err)

	candidates := engine.Classify("word")

	req.Len(candidates, 2)
	req.Equal("a", candidates[0].Tag)
	req.Equal("c", candidates[1].Tag)
	req.InDelta(0.4, candidates[0].Probability, 1e-12)
	req.Equal(candidates[0].Probability, candidates[1].Probability)
}

func TestEngine_Classify_probabilities_are_bounded_and_sorted(t *testing.T) {
	req := require.New(t)
	bundle := newBundle(t,
		[]string{"alpha", "beta", "gamma"},
		[]string{"x", "y", "z"},
		[][]float64{{1, 0.5, 0}, {0.2, 1.5, 0.1}, {0, 0, 0.3}},
		nil)
	engine, err := inference.NewEngine(bundle, testNormalizer())
	req.NoError(err)

	for _, text := range []string{"alpha", "beta", "alpha beta", "gamma beta", "alpha beta gamma"} {
		candidates := engine.Classify(text)
		for i, c := range candidates {
			req.Greater(c.Probability, inference.ConfidenceThreshold)
			req.LessOrEqual(c.Probability, 1.0)
			if i > 0 {
				req.GreaterOrEqual(candidates[i-1].Probability, c.Probability)
			}
		}
	}
}

func TestEngine_Respond_uses_top_candidate_responses(t *testing.T) {
	req := require.New(t)
	engine, err := inference.NewEngine(greetingBundle(t), testNormalizer(), inference.WithRandom(rand.New(rand.NewPCG(1, 1))))
	req.NoError(err)

	for range 50 {
		req.Contains([]string{"Hi!", "Hello there", "Hey"}, engine.ClassifyAndRespond("hello"))
	}
	req.Equal("See you", engine.ClassifyAndRespond("bye"))
}

func TestEngine_Respond_is_reproducible_with_the_same_source(t *testing.T) {
	req := require.New(t)
	first, err := inference.NewEngine(greetingBundle(t), testNormalizer(), inference.WithRandom(rand.New(rand.NewPCG(9, 9))))
	req.NoError(err)
	second, err := inference.NewEngine(greetingBundle(t), testNormalizer(), inference.WithRandom(rand.New(rand.NewPCG(9, 9))))
	req.NoError(err)

	for range 20 {
		req.Equal(first.ClassifyAndRespond("hello"), second.ClassifyAndRespond("hello"))
	}
}

func TestEngine_Respond_unknown_tag_falls_back(t *testing.T) {
	req := require.New(t)
	engine, err := inference.NewEngine(greetingBundle(t), testNormalizer())
	req.NoError(err)

	req.Equal(inference.FallbackResponse, engine.Respond([]domain.Candidate{{Tag: "weather", Probability: 0.9}}))
}

func TestNewEngine_rejects_inconsistent_bundles(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*repositories.Bundle)
	}{
		{name: "other lexical resource", mutate: func(b *repositories.Bundle) { b.Manifest.ResourceVersion = "golem/v4/dicts/fr@v1" }},
		{name: "model wider than vocabulary", mutate: func(b *repositories.Bundle) { b.Model = softmaxOnly([][]float64{{1, 0, 0}, {0, 1, 0}}) }},
		{name: "missing model", mutate: func(b *repositories.Bundle) { b.Model = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			bundle := greetingBundle(t)
			tc.mutate(&bundle)

			_, err := inference.NewEngine(bundle, testNormalizer())

			req.ErrorIs(err, errors.ErrArtifactLoad)
		})
	}
}

func TestEngine_is_safe_for_concurrent_requests(t *testing.T) {
	req := require.New(t)
	engine, err := inference.NewEngine(greetingBundle(t), testNormalizer(), inference.WithRandom(rand.New(rand.NewPCG(5, 5))))
	req.NoError(err)

	var wg sync.WaitGroup
	replies := make([]string, 64)
	for i := range replies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies[i] = engine.ClassifyAndRespond("bye")
		}(i)
	}
	wg.Wait()

	for _, reply := range replies {
		req.Equal("See you", reply)
	}
}

func TestEngine_end_to_end_from_a_stored_training_run(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	req.NoError(err)
	defer db.Close()

	// Given a corpus trained and stored with the default hyper-parameters
	c, err := corpus.Load("../corpus/testdata/intents.json")
	req.NoError(err)
	repository := repositories.NewArtifactRepository(db, log)
	seed := uint64(2024)
	options := training.DefaultOptions()
	options.Seed = &seed
	trainer := training.NewTrainer(log, testNormalizer(), repository, options)
	_, err = trainer.Train(context.Background(), c)
	req.NoError(err)

	// When a serving context is rebuilt from the stored run
	bundle, err := repository.LoadCurrent()
	req.NoError(err)
	engine, err := inference.NewEngine(bundle, testNormalizer())
	req.NoError(err)

	// Then training patterns are recognized
	candidates := engine.Classify("Hello")
	req.NotEmpty(candidates)
	req.Equal("greeting", candidates[0].Tag)
	responses, _ := c.Responses("greeting")
	req.Contains(responses, engine.Respond(candidates))

	// And unrelated text gets the fallback
	req.Equal(inference.FallbackResponse, engine.ClassifyAndRespond("quantum chromodynamics"))
}
