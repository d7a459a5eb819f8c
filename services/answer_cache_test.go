package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerCacheKeyNormalization(t *testing.T) {
	c := NewAnswerCache(nil, 3600)

	base := c.Key("ما هي شروط العقد؟", "jordan", []string{"civil", "commercial"})

	assert.True(t, strings.HasPrefix(base, "answer:"))

	// Law type order does not fragment the cache.
	assert.Equal(t, base, c.Key("ما هي شروط العقد؟", "jordan", []string{"commercial", "civil"}))

	// Diacritics and extra whitespace fold away.
	assert.Equal(t, base, c.Key("  ما هِيَ شُروط العقد؟ ", "jordan", []string{"civil", "commercial"}))

	// Country casing folds; a different country does not collide.
	assert.Equal(t, base, c.Key("ما هي شروط العقد؟", "JORDAN", []string{"civil", "commercial"}))
	assert.NotEqual(t, base, c.Key("ما هي شروط العقد؟", "uae", []string{"civil", "commercial"}))

	// Different questions get different keys.
	assert.NotEqual(t, base, c.Key("سؤال آخر تماما", "jordan", []string{"civil", "commercial"}))
}
