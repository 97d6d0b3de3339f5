package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChapterResponse(t *testing.T) {
	t.Run("Well-formed response", func(t *testing.T) {
		raw := "TITLE: The Broken Gate\nCONTENT:\nThe gate had stood for a thousand years."
		parsed := ParseChapterResponse(raw, 3)

		assert.Equal(t, "The Broken Gate", parsed.Title)
		assert.Equal(t, "The gate had stood for a thousand years.", parsed.Content)
	})

	t.Run("Lowercase markers", func(t *testing.T) {
		raw := "title: Into the Mist\ncontent:\nFog rolled over the harbor."
		parsed := ParseChapterResponse(raw, 1)

		assert.Equal(t, "Into the Mist", parsed.Title)
		assert.Equal(t, "Fog rolled over the harbor.", parsed.Content)
	})

	t.Run("Title wrapped in quotes and markdown", func(t *testing.T) {
		raw := "TITLE: \"**The Last Ember**\"\nCONTENT:\nAshes drifted down."
		parsed := ParseChapterResponse(raw, 2)

		assert.Equal(t, "The Last Ember", parsed.Title)
	})

	t.Run("Missing markers falls back to generated title", func(t *testing.T) {
		raw := "The story continued without any structure at all."
		parsed := ParseChapterResponse(raw, 5)

		assert.Equal(t, "Chapter 5", parsed.Title)
		assert.Equal(t, raw, parsed.Content)
	})

	t.Run("Content marker before title marker treated as unstructured", func(t *testing.T) {
		raw := "CONTENT: something\nTITLE: backwards"
		parsed := ParseChapterResponse(raw, 7)

		assert.Equal(t, "Chapter 7", parsed.Title)
	})

	t.Run("Empty title falls back", func(t *testing.T) {
		raw := "TITLE:\nCONTENT:\nBody text."
		parsed := ParseChapterResponse(raw, 4)

		assert.Equal(t, "Chapter 4", parsed.Title)
		assert.Equal(t, "Body text.", parsed.Content)
	})
}
