package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"plotvote-server/internal/models"
)

func TestBuildChapterPrompt(t *testing.T) {
	story := &models.Story{
		Title:       "The Hollow Crown",
		Description: "A kingdom without a king",
		Genre:       "fantasy",
	}

	t.Run("framework fields included when set", func(t *testing.T) {
		framed := *story
		framed.Language = "Spanish"
		framed.Characters = "Mira, a smuggler; Aldous, a priest"
		framed.Outline = "Three acts ending at the coronation"
		framed.WorldBuilding = "Magic is taxed by the crown"
		framed.Themes = "loyalty, succession"

		_, userPrompt := BuildChapterPrompt(&framed, nil, "storm the keep")

		assert.Contains(t, userPrompt, "Language: write the chapter in Spanish")
		assert.Contains(t, userPrompt, "Characters: Mira, a smuggler; Aldous, a priest")
		assert.Contains(t, userPrompt, "Outline: Three acts ending at the coronation")
		assert.Contains(t, userPrompt, "World: Magic is taxed by the crown")
		assert.Contains(t, userPrompt, "Themes: loyalty, succession")
		assert.Contains(t, userPrompt, "storm the keep")
	})

	t.Run("empty framework fields omitted", func(t *testing.T) {
		_, userPrompt := BuildChapterPrompt(story, nil, "direction")

		assert.NotContains(t, userPrompt, "Language:")
		assert.NotContains(t, userPrompt, "Characters:")
		assert.NotContains(t, userPrompt, "Outline:")
		assert.NotContains(t, userPrompt, "World:")
		assert.NotContains(t, userPrompt, "Themes:")
		assert.Contains(t, userPrompt, "Write chapter 1.")
	})

	t.Run("previous chapters appear in order", func(t *testing.T) {
		previous := []*models.Chapter{
			{ChapterNumber: 1, Title: "One", Content: "First."},
			{ChapterNumber: 2, Title: "Two", Content: "Second."},
		}

		_, userPrompt := BuildChapterPrompt(story, previous, "direction")

		first := strings.Index(userPrompt, "Chapter 1: One")
		second := strings.Index(userPrompt, "Chapter 2: Two")
		assert.Greater(t, first, -1)
		assert.Greater(t, second, first)
		assert.Contains(t, userPrompt, "Write chapter 3.")
	})
}
