package nlp

import (
	"chatbot-lab/errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/cases"
)

// EnglishResourceVersion identifies the lexical resource loaded by NewEnglishNormalizer.
// It is stored with every training run so serving refuses a different dictionary.
const EnglishResourceVersion = "golem/v4/dicts/en@v1.0.1"

// DefaultIgnoredTokens are dropped when building a vocabulary.
var DefaultIgnoredTokens = []string{"?", "!", ".", ","}

// Lemmatizer reduces a lower-cased word to its base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Normalizer turns raw text into lemmas. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	lemmatizer Lemmatizer
	version    string
	ignored    map[string]struct{}
}

// NewNormalizer builds a normalizer over any lemmatizer.
// The version string is what training records and serving checks.
func NewNormalizer(lemmatizer Lemmatizer, version string, ignored []string) *Normalizer {
	set := make(map[string]struct{}, len(ignored))
	for _, token := range ignored {
		set[token] = struct{}{}
	}
	return &Normalizer{lemmatizer: lemmatizer, version: version, ignored: set}
}

// NewEnglishNormalizer loads the English golem dictionary.
// The dictionary is decompressed in memory; failing to load it is fatal for both training and serving.
func NewEnglishNormalizer() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrResourceUnavailable, EnglishResourceVersion, err)
	}
	return NewNormalizer(lemmatizer, EnglishResourceVersion, DefaultIgnoredTokens), nil
}

// ResourceVersion names the lexical resource backing the lemmatizer.
func (n *Normalizer) ResourceVersion() string {
	return n.version
}

// Normalize splits text on Unicode word boundaries (UAX #29), drops whitespace,
// case-folds every token and reduces it to its lemma.
// Punctuation tokens are kept: they never match a vocabulary entry.
func (n *Normalizer) Normalize(text string) []string {
	// A Caser is stateful, one per call keeps Normalize safe for concurrent use.
	folder := cases.Fold()
	var out []string
	tokens := words.FromString(text)
	for tokens.Next() {
		token := tokens.Value()
		if isBlank(token) {
			continue
		}
		out = append(out, n.lemmatizer.Lemma(folder.String(token)))
	}
	return out
}

// IsIgnored reports whether the token is excluded from vocabulary construction.
func (n *Normalizer) IsIgnored(token string) bool {
	_, ok := n.ignored[token]
	return ok
}

// WordTokens filters out ignored punctuation.
func (n *Normalizer) WordTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !n.IsIgnored(token) {
			out = append(out, token)
		}
	}
	return out
}

func isBlank(token string) bool {
	return strings.TrimFunc(token, unicode.IsSpace) == ""
}

// IdentityLemmatizer returns words unchanged.
type IdentityLemmatizer struct{}

func (IdentityLemmatizer) Lemma(word string) string { return word }
