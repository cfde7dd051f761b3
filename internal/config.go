package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Config is the serving process configuration, read from the environment.
type Config struct {
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	RunID            string        `env:"RUN_ID"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	Host             string        `env:"HOST,default=localhost"`
	Port             int           `env:"PORT,default=8080"`
	SuggestionLimit  int           `env:"SUGGESTION_LIMIT,default=3"`
	MaxMessageLength int           `env:"MAX_MESSAGE_LENGTH,default=500"`
	BlockedWords     string        `env:"BLOCKED_WORDS"`
	CharReplacement  string        `env:"CHARACTER_REPLACEMENT,default=*"`
	AuthSecret       string        `env:"AUTH_SECRET"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// BlockedWordList splits the comma separated BLOCKED_WORDS value.
func (c Config) BlockedWordList() []string {
	return lo.Compact(lo.Map(strings.Split(c.BlockedWords, ","), func(word string, _ int) string {
		return strings.TrimSpace(word)
	}))
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
