// Package domain contains core concepts of the chatbot.
// This file defines intents, the corpus they are grouped in,
// and the candidates produced when a message is classified.
package domain

// Intent is a labeled category of user request with its example patterns
// and the canned responses the bot may answer with.
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag" validate:"required"`
	Patterns  []string `json:"patterns" yaml:"patterns" validate:"required,min=1"`
	Responses []string `json:"responses" yaml:"responses" validate:"required,min=1,dive,required"`
}

// Corpus groups every intent under the top-level "intents" key.
type Corpus struct {
	Intents []Intent `json:"intents" yaml:"intents" validate:"dive"`
}

// Responses returns the responses of the first intent carrying the tag.
func (c Corpus) Responses(tag string) ([]string, bool) {
	for _, intent := range c.Intents {
		if intent.Tag == tag {
			return intent.Responses, true
		}
	}
	return nil, false
}

// PatternCount is the number of patterns across all intents.
func (c Corpus) PatternCount() int {
	count := 0
	for _, intent := range c.Intents {
		count += len(intent.Patterns)
	}
	return count
}

// Candidate is an intent whose predicted probability cleared the confidence threshold.
type Candidate struct {
	Tag         string
	Probability float64
}

// Turn is one exchange of a conversation.
type Turn struct {
	User string
	Bot  string
}
