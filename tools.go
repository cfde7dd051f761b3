//go:build tools
// +build tools

// Package tools pins the code generators invoked by go:generate
// (mockgen for the mocks package) as module dependencies.
package chatbot_lab

import (
	_ "go.uber.org/mock/mockgen"
)
