package training

import (
	"chatbot-lab/ai"
	"chatbot-lab/domain"
	"chatbot-lab/errors"
	"chatbot-lab/nlp"
	"chatbot-lab/observability"
	"chatbot-lab/repositories"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type PatternStatus string

const (
	PatternAccepted PatternStatus = "accepted"
	PatternSkipped  PatternStatus = "skipped"
)

// PatternResult reports what happened to a single corpus pattern.
// Err wraps errors.ErrPatternProcessing when the pattern was skipped.
type PatternResult struct {
	Tag     string
	Pattern string
	Tokens  []string
	Status  PatternStatus
	Reason  string
	Err     error
}

// Options are the network shape and fitting hyper-parameters.
// A nil Seed draws a fresh one for every run.
type Options struct {
	Hidden  []int
	Dropout float64
	Fit     ai.FitOptions
	Seed    *uint64
}

// DefaultOptions: two hidden layers of 128 and 64 units, dropout 0.5, ai.DefaultFitOptions.
func DefaultOptions() Options {
	return Options{
		Hidden:  []int{128, 64},
		Dropout: 0.5,
		Fit:     ai.DefaultFitOptions(),
	}
}

// Prepared is the corpus turned into training material.
type Prepared struct {
	Vocabulary domain.Vocabulary
	Labels     domain.LabelSet
	Dataset    ai.Dataset
	Patterns   []PatternResult
}

func (p Prepared) Accepted() []PatternResult {
	return lo.Filter(p.Patterns, func(r PatternResult, _ int) bool { return r.Status == PatternAccepted })
}

func (p Prepared) Skipped() []PatternResult {
	return lo.Filter(p.Patterns, func(r PatternResult, _ int) bool { return r.Status == PatternSkipped })
}

// Report summarizes a completed training run.
type Report struct {
	Manifest domain.Manifest
	Patterns []PatternResult
	History  []ai.EpochStats
	Duration time.Duration
	Usage    observability.ProcessUsage
}

func (r Report) Skipped() []PatternResult {
	return lo.Filter(r.Patterns, func(p PatternResult, _ int) bool { return p.Status == PatternSkipped })
}

// FinalEpoch returns the statistics of the last epoch, if any.
func (r Report) FinalEpoch() (ai.EpochStats, bool) {
	if len(r.History) == 0 {
		return ai.EpochStats{}, false
	}
	return r.History[len(r.History)-1], true
}

type Trainer struct {
	log        *slog.Logger
	normalizer *nlp.Normalizer
	repository repositories.IArtifactRepository
	options    Options
	now        func() time.Time
}

func NewTrainer(log *slog.Logger, normalizer *nlp.Normalizer, repository repositories.IArtifactRepository, options Options) *Trainer {
	return &Trainer{
		log:        log,
		normalizer: normalizer,
		repository: repository,
		options:    options,
		now:        time.Now,
	}
}

type document struct {
	tag    string
	tokens []string
}

// Prepare normalizes every pattern, builds the vocabulary and label set
// and encodes one (bag-of-words, one-hot) row per accepted pattern.
// Only tags with at least one accepted pattern make it into the label set.
func (t *Trainer) Prepare(corpus domain.Corpus) (Prepared, error) {
	if len(corpus.Intents) == 0 {
		return Prepared{}, errors.ErrEmptyCorpus
	}

	var (
		results   []PatternResult
		documents []document
		words     []string
	)
	for _, intent := range corpus.Intents {
		for _, pattern := range intent.Patterns {
			result := t.processPattern(intent.Tag, pattern)
			results = append(results, result)
			if result.Status == PatternSkipped {
				t.log.Warn("Pattern skipped", "tag", intent.Tag, "pattern", pattern, "reason", result.Reason)
				continue
			}
			documents = append(documents, document{tag: intent.Tag, tokens: result.Tokens})
			words = append(words, t.normalizer.WordTokens(result.Tokens)...)
		}
	}

	vocabulary := domain.BuildVocabulary(words)
	labels := domain.BuildLabelSet(lo.Map(documents, func(d document, _ int) string { return d.tag }))
	if vocabulary.Len() == 0 || labels.Len() == 0 {
		return Prepared{}, fmt.Errorf("%w: none of the %d patterns could be used", errors.ErrEmptyCorpus, len(results))
	}

	var dataset ai.Dataset
	for _, doc := range documents {
		index, _ := labels.Index(doc.tag)
		dataset.Append(ai.Encode(doc.tokens, vocabulary), ai.OneHot(index, labels.Len()))
	}

	return Prepared{
		Vocabulary: vocabulary,
		Labels:     labels,
		Dataset:    dataset,
		Patterns:   results,
	}, nil
}

func (t *Trainer) processPattern(tag, pattern string) PatternResult {
	result := PatternResult{Tag: tag, Pattern: pattern, Status: PatternAccepted}
	skip := func(reason string) PatternResult {
		result.Status = PatternSkipped
		result.Reason = reason
		result.Err = fmt.Errorf("%w: %s", errors.ErrPatternProcessing, reason)
		return result
	}

	if !utf8.ValidString(pattern) {
		return skip("invalid UTF-8")
	}
	if strings.TrimSpace(pattern) == "" {
		return skip("blank pattern")
	}
	result.Tokens = t.normalizer.Normalize(pattern)
	if len(t.normalizer.WordTokens(result.Tokens)) == 0 {
		return skip("no word token")
	}
	return result
}

// Train prepares the corpus, fits a fresh network and persists the run.
// Nothing is written unless fitting succeeded.
func (t *Trainer) Train(ctx context.Context, corpus domain.Corpus) (Report, error) {
	start := t.now()

	prepared, err := t.Prepare(corpus)
	if err != nil {
		return Report{}, err
	}
	accepted := len(prepared.Accepted())
	skipped := len(prepared.Skipped())
	t.log.Info("Corpus prepared",
		"vocabulary", prepared.Vocabulary.Len(),
		"labels", prepared.Labels.Len(),
		"accepted", accepted,
		"skipped", skipped)

	rng := t.newRand()
	network, err := ai.NewNetwork(prepared.Vocabulary.Len(), t.options.Hidden, prepared.Labels.Len(), t.options.Dropout, rng)
	if err != nil {
		return Report{}, fmt.Errorf("building network: %w", err)
	}

	fitOptions := t.options.Fit
	fitOptions.Rand = rng
	history, err := network.Fit(prepared.Dataset, fitOptions, t.logEpoch(fitOptions.Epochs))
	if err != nil {
		return Report{}, fmt.Errorf("fitting network: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	manifest, err := t.repository.Save(repositories.Bundle{
		Manifest: domain.Manifest{
			RunID:           uuid.New(),
			TrainedAt:       t.now().UTC(),
			ResourceVersion: t.normalizer.ResourceVersion(),
			VocabularySize:  prepared.Vocabulary.Len(),
			LabelCount:      prepared.Labels.Len(),
			PatternCount:    accepted,
			SkippedCount:    skipped,
		},
		Vocabulary: prepared.Vocabulary,
		Labels:     prepared.Labels,
		Model:      network,
		Corpus:     corpus,
	})
	if err != nil {
		return Report{}, fmt.Errorf("saving training run: %w", err)
	}

	usage, err := observability.Usage()
	if err != nil {
		t.log.Warn("Unable to read process usage", "error", err)
	}

	report := Report{
		Manifest: manifest,
		Patterns: prepared.Patterns,
		History:  history,
		Duration: t.now().Sub(start),
		Usage:    usage,
	}
	t.log.Info("Training run completed", "run_id", manifest.RunID, "duration", report.Duration)
	return report, nil
}

func (t *Trainer) newRand() *rand.Rand {
	seed := rand.Uint64()
	if t.options.Seed != nil {
		seed = *t.options.Seed
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (t *Trainer) logEpoch(epochs int) func(ai.EpochStats) {
	every := max(epochs/10, 1)
	return func(stats ai.EpochStats) {
		if stats.Epoch%every == 0 || stats.Epoch == epochs {
			t.log.Info("Epoch", "epoch", stats.Epoch, "loss", stats.Loss, "accuracy", stats.Accuracy)
			return
		}
		t.log.Debug("Epoch", "epoch", stats.Epoch, "loss", stats.Loss, "accuracy", stats.Accuracy)
	}
}
