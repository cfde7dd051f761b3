package inference

import (
	"chatbot-lab/ai"
	"chatbot-lab/domain"
	"chatbot-lab/errors"
	"chatbot-lab/nlp"
	"chatbot-lab/repositories"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// ConfidenceThreshold is exclusive: a candidate must score strictly above it.
const ConfidenceThreshold = 0.25

const FallbackResponse = "I'm not sure I understand that. Can you try rephrasing?"

// Engine is the inference context of a serving process.
// It is built once from a training run and never mutated afterwards,
// so Classify can be called from any number of goroutines.
type Engine struct {
	normalizer *nlp.Normalizer
	vocabulary domain.Vocabulary
	labels     domain.LabelSet
	model      *ai.Network
	corpus     domain.Corpus
	manifest   domain.Manifest
	responder  *Responder
}

type Option func(*Engine)

// WithRandom makes response selection draw from rng.
func WithRandom(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.responder = NewResponder(rng)
	}
}

// NewEngine checks that the bundle is usable with this normalizer.
// A bundle trained with another lexical resource is rejected.
func NewEngine(bundle repositories.Bundle, normalizer *nlp.Normalizer, opts ...Option) (*Engine, error) {
	if bundle.Model == nil {
		return nil, fmt.Errorf("%w: model is missing", errors.ErrArtifactLoad)
	}
	if bundle.Manifest.ResourceVersion != "" && bundle.Manifest.ResourceVersion != normalizer.ResourceVersion() {
		return nil, fmt.Errorf("%w: %w: trained with %q, serving with %q",
			errors.ErrArtifactLoad, errors.ErrArtifactMismatch,
			bundle.Manifest.ResourceVersion, normalizer.ResourceVersion())
	}
	if bundle.Model.InputSize() != bundle.Vocabulary.Len() || bundle.Model.OutputSize() != bundle.Labels.Len() {
		return nil, fmt.Errorf("%w: %w: model is %dx%d, vocabulary has %d words and %d labels",
			errors.ErrArtifactLoad, errors.ErrArtifactMismatch,
			bundle.Model.InputSize(), bundle.Model.OutputSize(), bundle.Vocabulary.Len(), bundle.Labels.Len())
	}

	engine := &Engine{
		normalizer: normalizer,
		vocabulary: bundle.Vocabulary,
		labels:     bundle.Labels,
		model:      bundle.Model,
		corpus:     bundle.Corpus,
		manifest:   bundle.Manifest,
		responder:  NewResponder(nil),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

func (e *Engine) Manifest() domain.Manifest {
	return e.manifest
}

// Classify returns the labels scoring strictly above ConfidenceThreshold,
// most probable first. Ties keep label-set order.
// Text sharing no word with the vocabulary yields no candidate.
func (e *Engine) Classify(text string) []domain.Candidate {
	vector := ai.Encode(e.normalizer.Normalize(text), e.vocabulary)
	if vector.IsZero() {
		return nil
	}

	probabilities := e.model.Predict(vector)
	var candidates []domain.Candidate
	for i, p := range probabilities {
		if p > ConfidenceThreshold {
			candidates = append(candidates, domain.Candidate{Tag: e.labels.At(i), Probability: p})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Probability > candidates[j].Probability
	})
	return candidates
}

// Respond picks one of the responses of the top candidate,
// or FallbackResponse when there is none.
func (e *Engine) Respond(candidates []domain.Candidate) string {
	if len(candidates) == 0 {
		return FallbackResponse
	}
	responses, ok := e.corpus.Responses(candidates[0].Tag)
	if !ok || len(responses) == 0 {
		return FallbackResponse
	}
	return e.responder.Pick(responses)
}

func (e *Engine) ClassifyAndRespond(text string) string {
	return e.Respond(e.Classify(text))
}

// Responder draws responses uniformly. A nil source falls back to the
// process-wide generator, which is already safe for concurrent use.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewResponder(rng *rand.Rand) *Responder {
	return &Responder{rng: rng}
}

func (r *Responder) Pick(responses []string) string {
	if r.rng == nil {
		return responses[rand.IntN(len(responses))]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return responses[r.rng.IntN(len(responses))]
}
