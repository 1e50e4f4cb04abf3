package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowIDsPerDescriptor(t *testing.T) {
	a := NewAllocator()

	assert.Equal(t, "notes-1", a.Window("notes", false))
	assert.Equal(t, "notes-2", a.Window("notes", false))
	assert.Equal(t, "term-1", a.Window("term", false), "counters are per descriptor")
}

func TestSingletonReusesDescriptorID(t *testing.T) {
	a := NewAllocator()

	assert.Equal(t, "settings", a.Window("settings", true))
	assert.Equal(t, "settings", a.Window("settings", true))
}

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := Token()
		assert.NotEmpty(t, token)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
