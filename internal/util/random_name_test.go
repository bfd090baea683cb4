package util

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRandomName(t *testing.T) {
	random = rand.New(rand.NewSource(0)) // nolint:gosec

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name := GetRandomName()
		parts := strings.SplitN(name, " ", 2)
		if assert.Len(t, parts, 2) {
			assert.Contains(t, adjectives, parts[0])
			assert.Contains(t, nicknames, parts[1])
		}
		seen[name] = true
	}

	assert.Greater(t, len(seen), 1)

	// the same seed gives the same sequence
	random = rand.New(rand.NewSource(42)) // nolint:gosec
	first := GetRandomName()
	random = rand.New(rand.NewSource(42)) // nolint:gosec
	assert.Equal(t, first, GetRandomName())
}
