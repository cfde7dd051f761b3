package ai

import "chatbot-lab/domain"

// Encode transforms normalized tokens into a bag-of-words presence vector.
// Position i is 1.0 when vocabulary word i occurs in tokens. Repetitions and
// order are irrelevant and tokens outside the vocabulary contribute nothing.
func Encode(tokens []string, vocabulary domain.Vocabulary) domain.FeatureVector {
	vec := make(domain.FeatureVector, vocabulary.Len())
	for _, token := range tokens {
		if idx, ok := vocabulary.Index(token); ok {
			vec[idx] = 1.0
		}
	}
	return vec
}
