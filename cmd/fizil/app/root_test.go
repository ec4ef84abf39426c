package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFizilCommandRegistersSubcommands(t *testing.T) {
	cmd := NewFizilCommand()

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["fuzz"])
	assert.True(t, names["version"])
}
