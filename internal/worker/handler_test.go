package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plotvote-server/internal/mocks"
	"plotvote-server/internal/models"
	"plotvote-server/internal/worker"
)

func TestGenerationHandler_HandleTask(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	promptID := uuid.New()

	task := models.GenerationTask{
		TaskID:        uuid.NewString(),
		StoryID:       storyID,
		ChapterNumber: 2,
		PromptID:      promptID,
		PromptText:    "The dragon lands on the tower",
	}

	story := &models.Story{
		ID:          storyID,
		Title:       "Tower of Dawn",
		Description: "A siege that never ends",
		Genre:       "fantasy",
		Status:      models.StoryStatusActive,
	}

	winnerPrompt := func() *models.Prompt {
		return &models.Prompt{
			ID:      promptID,
			StoryID: storyID,
			Text:    "stored direction",
			Status:  models.PromptStatusWinner,
		}
	}

	t.Run("generates and saves chapter", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		chapterRepo := mocks.NewMockChapterRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)
		aiClient := mocks.NewMockAIClient(t)

		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(false, nil).Once()
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		promptRepo.On("GetByID", mock.Anything, mock.Anything, promptID).Return(winnerPrompt(), nil).Once()
		chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).
			Return([]*models.Chapter{{ChapterNumber: 1, Title: "First Light", Content: "The siege began."}}, nil).Once()
		aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("TITLE: Wings Over Stone\nCONTENT:\nThe dragon landed and the walls shook.", nil).Once()
		chapterRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(ch *models.Chapter) bool {
			return ch.StoryID == storyID && ch.ChapterNumber == 2 &&
				ch.Title == "Wings Over Stone" &&
				ch.WinningPromptID != nil && *ch.WinningPromptID == promptID &&
				ch.WordCount > 0 && ch.ReadTimeMinutes >= 1
		})).Return(nil).Once()

		h := worker.NewGenerationHandler(nil, storyRepo, chapterRepo, promptRepo, aiClient)
		err := h.HandleTask(ctx, task)

		require.NoError(t, err)
		chapterRepo.AssertExpectations(t)
	})

	t.Run("redelivered task for existing chapter is acknowledged", func(t *testing.T) {
		chapterRepo := mocks.NewMockChapterRepository(t)
		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(true, nil).Once()

		aiClient := mocks.NewMockAIClient(t)
		h := worker.NewGenerationHandler(nil, mocks.NewMockStoryRepository(t), chapterRepo, mocks.NewMockPromptRepository(t), aiClient)
		err := h.HandleTask(ctx, task)

		require.NoError(t, err)
		aiClient.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("task for non-winner prompt is dropped", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		chapterRepo := mocks.NewMockChapterRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)
		aiClient := mocks.NewMockAIClient(t)

		stale := winnerPrompt()
		stale.Status = models.PromptStatusRejected

		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(false, nil).Once()
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		promptRepo.On("GetByID", mock.Anything, mock.Anything, promptID).Return(stale, nil).Once()

		h := worker.NewGenerationHandler(nil, storyRepo, chapterRepo, promptRepo, aiClient)
		err := h.HandleTask(ctx, task)

		require.NoError(t, err)
		aiClient.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything)
		chapterRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted prompt drops the task", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		chapterRepo := mocks.NewMockChapterRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)

		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(false, nil).Once()
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		promptRepo.On("GetByID", mock.Anything, mock.Anything, promptID).
			Return(nil, models.ErrPromptNotFound).Once()

		h := worker.NewGenerationHandler(nil, storyRepo, chapterRepo, promptRepo, mocks.NewMockAIClient(t))
		err := h.HandleTask(ctx, task)

		require.NoError(t, err)
	})

	t.Run("missing prompt text falls back to stored text", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		chapterRepo := mocks.NewMockChapterRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)
		aiClient := mocks.NewMockAIClient(t)

		bare := task
		bare.PromptText = ""

		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(false, nil).Once()
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		promptRepo.On("GetByID", mock.Anything, mock.Anything, promptID).Return(winnerPrompt(), nil).Once()
		chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).Return(nil, nil).Once()
		aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.MatchedBy(func(userPrompt string) bool {
			return len(userPrompt) > 0
		})).Return("some chapter text without markers", nil).Once()
		chapterRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(ch *models.Chapter) bool {
			// Без маркеров заголовок генерируется по номеру
			return ch.Title == "Chapter 2"
		})).Return(nil).Once()

		h := worker.NewGenerationHandler(nil, storyRepo, chapterRepo, promptRepo, aiClient)
		err := h.HandleTask(ctx, bare)

		require.NoError(t, err)
	})

	t.Run("ai failure returns error for redelivery", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		chapterRepo := mocks.NewMockChapterRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)
		aiClient := mocks.NewMockAIClient(t)

		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(false, nil).Once()
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		promptRepo.On("GetByID", mock.Anything, mock.Anything, promptID).Return(winnerPrompt(), nil).Once()
		chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).Return(nil, nil).Once()
		aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("timeout")).Once()

		h := worker.NewGenerationHandler(nil, storyRepo, chapterRepo, promptRepo, aiClient)
		err := h.HandleTask(ctx, task)

		assert.Error(t, err)
	})

	t.Run("deleted story drops the task", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		chapterRepo := mocks.NewMockChapterRepository(t)

		chapterRepo.On("ExistsForSlot", mock.Anything, mock.Anything, storyID, 2).Return(false, nil).Once()
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(nil, models.ErrStoryNotFound).Once()

		h := worker.NewGenerationHandler(nil, storyRepo, chapterRepo, mocks.NewMockPromptRepository(t), mocks.NewMockAIClient(t))
		err := h.HandleTask(ctx, task)

		require.NoError(t, err)
	})
}
