package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator masks blocked words in user messages before they are logged or echoed back.
// Matching ignores case, punctuation, spacing and common leet-speak substitutions.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the Aho-Corasick automaton over the normalized blocked words.
// Words that normalize to nothing are ignored; an empty list yields a pass-through moderator.
func NewModerator(blockedWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := lo.UniqBy(
		lo.Filter(
			lo.Map(blockedWords, func(word string, _ int) []rune { return normalizeRunes([]rune(word)) }),
			func(p []rune, _ int) bool { return len(p) > 0 }),
		func(p []rune) string { return string(p) })

	moderator := &Moderator{censoredChar: censoredChar, log: log}
	if len(patterns) == 0 {
		return moderator, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	moderator.matcher = m
	log.Debug("Moderator ready", "blocked_words", len(patterns))
	return moderator, nil
}

// Censor replaces every character of each blocked word occurrence with the censored rune,
// keeping the surrounding text untouched. It also returns the matched words in order.
func (m *Moderator) Censor(original string) (string, []string) {
	if m.matcher == nil {
		return original, nil
	}
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var words []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.censoredChar
		}
		words = append(words, string(span.Word))
	}

	if len(words) > 0 {
		m.log.Debug("Message censored", "matches", len(words))
	}
	return string(origRunes), words
}

// normalize keeps the searchable runes of input together with their original positions.
func normalize(input string) textMapping {
	origRunes := []rune(input)
	mapping := textMapping{
		normalized: make([]rune, 0, len(origRunes)),
		origIdx:    make([]int, 0, len(origRunes)),
	}
	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		mapping.normalized = append(mapping.normalized, unicode.ToLower(clean))
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps leet-speak characters back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
