package internal

import (
	"os"
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_FromEnvironment(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/chatbot")
	t.Setenv("BLOCKED_WORDS", " idiot, ,moron ,")
	t.Setenv("PORT", "9090")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.Equal("/tmp/chatbot", config.BadgerFilepath)
	req.Equal(9090, config.Port)
	req.Equal("localhost", config.Host)
	req.Equal(3, config.SuggestionLimit)
	req.Equal([]string{"idiot", "moron"}, config.BlockedWordList())
	req.Empty(config.AuthSecret)
}

func TestConfig_RequiresBadgerFilepath(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "")
	req.NoError(os.Unsetenv("BADGER_FILEPATH"))

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.Error(err)
}

func TestCharacterRune(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{input: "*", want: '*'},
		{input: "€", want: '€'},
		{input: "", wantErr: true},
		{input: "**", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req := require.New(t)
			got, err := CharacterRune(tt.input)
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}
