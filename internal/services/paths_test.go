package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuarantineKey(t *testing.T) {
	ref, ok := ParseQuarantineKey("quarantine/user-1/media-9/cat.jpg")
	assert.True(t, ok)
	assert.Equal(t, UploadRef{OwnerUID: "user-1", MediaID: "media-9", FileName: "cat.jpg"}, ref)

	for _, key := range []string{
		"public/user-1/media-9.jpg",
		"quarantine/user-1/cat.jpg",
		"quarantine/user-1/media-9/sub/cat.jpg",
		"quarantine//media-9/cat.jpg",
		"quarantine/user-1/media-9/",
		"quarantine/",
		"",
	} {
		_, ok := ParseQuarantineKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestQuarantineKeyRoundTrip(t *testing.T) {
	key := QuarantineKey("u1", "m1", "dog.png")
	assert.Equal(t, "quarantine/u1/m1/dog.png", key)

	ref, ok := ParseQuarantineKey(key)
	assert.True(t, ok)
	assert.Equal(t, "u1", ref.OwnerUID)
	assert.Equal(t, "m1", ref.MediaID)
	assert.Equal(t, "dog.png", ref.FileName)
}

func TestPublicKey(t *testing.T) {
	assert.Equal(t, "public/u1/m1.jpg", PublicKey("u1", "m1", "holiday.jpg"))
	assert.Equal(t, "public/u1/m1.mp4", PublicKey("u1", "m1", "clip.mp4"))
	assert.Equal(t, "public/u1/m1", PublicKey("u1", "m1", "raw"))
}

func TestPublicURL(t *testing.T) {
	url := PublicURL("https://cdn.example.com/bucket", "public/u1/m1.jpg")
	assert.Equal(t, "https://cdn.example.com/bucket/public/u1/m1.jpg", url)

	// Trailing slash on the base is normalized.
	url = PublicURL("https://cdn.example.com/bucket/", "public/u1/m1.jpg")
	assert.Equal(t, "https://cdn.example.com/bucket/public/u1/m1.jpg", url)

	// Segments with reserved characters are escaped individually.
	url = PublicURL("https://cdn.example.com", "public/u 1/m#1.jpg")
	assert.Equal(t, "https://cdn.example.com/public/u%201/m%231.jpg", url)
}
