package domain

import (
	"fmt"
	"sort"
)

// orderedSet is an immutable list of unique strings with O(1) index lookup.
// The order is part of the contract: it fixes feature and label positions.
type orderedSet struct {
	items []string
	index map[string]int
}

func newOrderedSet(items []string) (orderedSet, error) {
	index := make(map[string]int, len(items))
	for i, item := range items {
		if _, ok := index[item]; ok {
			return orderedSet{}, fmt.Errorf("duplicate entry %q at position %d", item, i)
		}
		index[item] = i
	}
	return orderedSet{items: append([]string(nil), items...), index: index}, nil
}

func sortedUnique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func (s orderedSet) Len() int { return len(s.items) }

// Index returns the position of item, if known.
func (s orderedSet) Index(item string) (int, bool) {
	i, ok := s.index[item]
	return i, ok
}

// At returns the item stored at position i.
func (s orderedSet) At(i int) string { return s.items[i] }

// Items returns a copy of the ordered items.
func (s orderedSet) Items() []string { return append([]string(nil), s.items...) }

// Vocabulary is the ordered set of known lemmas. Position i is feature i.
type Vocabulary struct{ orderedSet }

// NewVocabulary keeps the given order as is. It is used to restore a persisted vocabulary.
func NewVocabulary(words []string) (Vocabulary, error) {
	set, err := newOrderedSet(words)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary: %w", err)
	}
	return Vocabulary{set}, nil
}

// BuildVocabulary deduplicates and sorts tokens lexicographically.
func BuildVocabulary(tokens []string) Vocabulary {
	set, _ := newOrderedSet(sortedUnique(tokens))
	return Vocabulary{set}
}

// Words returns the vocabulary in feature order.
func (v Vocabulary) Words() []string { return v.Items() }

// LabelSet is the ordered set of intent tags. Position i is output i.
type LabelSet struct{ orderedSet }

// NewLabelSet keeps the given order as is. It is used to restore a persisted label set.
func NewLabelSet(tags []string) (LabelSet, error) {
	set, err := newOrderedSet(tags)
	if err != nil {
		return LabelSet{}, fmt.Errorf("label set: %w", err)
	}
	return LabelSet{set}, nil
}

// BuildLabelSet deduplicates and sorts tags lexicographically.
func BuildLabelSet(tags []string) LabelSet {
	set, _ := newOrderedSet(sortedUnique(tags))
	return LabelSet{set}
}

// Tags returns the labels in output order.
func (l LabelSet) Tags() []string { return l.Items() }

// FeatureVector is a bag-of-words presence vector: 1 when the word at the
// same vocabulary position occurs in the text, 0 otherwise.
type FeatureVector []float64

// IsZero reports whether no vocabulary word was found.
func (f FeatureVector) IsZero() bool {
	for _, v := range f {
		if v != 0 {
			return false
		}
	}
	return true
}
