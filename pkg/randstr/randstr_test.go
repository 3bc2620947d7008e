package randstr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	g := New([]byte("abc123"))

	s := g.GenerateRandomString(16)
	assert.Len(t, s, 16)
	for _, r := range s {
		assert.True(t, strings.ContainsRune("abc123", r), "unexpected rune %q", r)
	}

	assert.NotEqual(t, g.GenerateRandomString(16), g.GenerateRandomString(16))
}
