package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoID(t *testing.T) {
	seen := map[string]bool{}

	for range 100 {
		id := NanoID()
		assert.Len(t, id, 32)
		for _, c := range id {
			assert.True(t, strings.ContainsRune(idAlphabet, c), "unexpected character %q", c)
		}

		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
