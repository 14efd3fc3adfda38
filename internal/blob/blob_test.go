package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoKey(t *testing.T) {
	key := PhotoKey("user-1", "kitchen.webp")
	assert.True(t, strings.HasPrefix(key, "property-photos/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".webp"))

	// Two uploads of the same filename never collide.
	assert.NotEqual(t, key, PhotoKey("user-1", "kitchen.webp"))
}

func TestPhotoKeyDefaultsExtension(t *testing.T) {
	key := PhotoKey("user-1", "photo")
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}
