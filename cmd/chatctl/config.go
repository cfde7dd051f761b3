package main

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds chatctl defaults, read from CHATCTL_* variables and overridable by flags.
type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/chatbot"`
	ServerAddr     string `envconfig:"SERVER_ADDR" default:"localhost:8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	Token          string `envconfig:"TOKEN"`
	AuthSecret     string `envconfig:"AUTH_SECRET"`
	Colours        bool   `envconfig:"COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("CHATCTL", &cfg)
	return cfg, err
}
