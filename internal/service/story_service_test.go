package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plotvote-server/internal/mocks"
	"plotvote-server/internal/models"
	"plotvote-server/internal/service"
)

type fixedVotesNeeded int

func (f fixedVotesNeeded) VotesNeeded() int { return int(f) }

func newStoryService(storyRepo *mocks.MockStoryRepository, chapterRepo *mocks.MockChapterRepository, promptRepo *mocks.MockPromptRepository) service.StoryService {
	return service.NewStoryService(nil, &mocks.MockTxManager{}, storyRepo, chapterRepo, promptRepo, fixedVotesNeeded(10), zap.NewNop())
}

func TestStoryService_CreateStory(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	t.Run("public story starts as pitch with settings threshold", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
			return s.Status == models.StoryStatusPitch && s.VotesNeeded == 10
		})).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		story, err := svc.CreateStory(ctx, service.CreateStoryParams{
			AuthorID:    authorID,
			Title:       "The Last Lighthouse",
			Description: "A keeper discovers the light calls to something in the deep",
			Genre:       "horror",
		})

		require.NoError(t, err)
		assert.Equal(t, models.StoryStatusPitch, story.Status)
		assert.Equal(t, 10, story.VotesNeeded)
	})

	t.Run("story framework fields are persisted", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
			return s.Language == "Spanish" && s.Characters == "Mira, a stubborn cartographer" &&
				s.Outline == "Three acts at sea" && s.WorldBuilding == "Drowned archipelago" &&
				s.Themes == "memory, tides"
		})).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		story, err := svc.CreateStory(ctx, service.CreateStoryParams{
			AuthorID:      authorID,
			Title:         "Tidebound",
			Description:   "Maps that redraw themselves",
			Genre:         "fantasy",
			Language:      "Spanish",
			Characters:    "Mira, a stubborn cartographer",
			Outline:       "Three acts at sea",
			WorldBuilding: "Drowned archipelago",
			Themes:        "memory, tides",
		})

		require.NoError(t, err)
		assert.Equal(t, "Spanish", story.Language)
		storyRepo.AssertExpectations(t)
	})

	t.Run("personal story is active immediately", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
			return s.Status == models.StoryStatusActive && s.IsPersonal
		})).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		story, err := svc.CreateStory(ctx, service.CreateStoryParams{
			AuthorID:    authorID,
			Title:       "My story",
			Description: "Just for me",
			IsPersonal:  true,
		})

		require.NoError(t, err)
		assert.Equal(t, models.StoryStatusActive, story.Status)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		svc := newStoryService(mocks.NewMockStoryRepository(t), mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		_, err := svc.CreateStory(ctx, service.CreateStoryParams{AuthorID: authorID, Description: "d"})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestStoryService_ToggleUpvote(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	userID := uuid.New()

	pitch := func(votesNeeded int) *models.Story {
		return &models.Story{ID: storyID, Status: models.StoryStatusPitch, VotesNeeded: votesNeeded}
	}

	t.Run("upvote below threshold keeps pitch", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, storyID).Return(pitch(10), nil).Once()
		storyRepo.On("AddUpvote", mock.Anything, mock.Anything, storyID, userID).Return(nil).Once()
		storyRepo.On("CountUpvotes", mock.Anything, mock.Anything, storyID).Return(4, nil).Once()
		storyRepo.On("SetUpvoteCount", mock.Anything, mock.Anything, storyID, 4).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		result, err := svc.ToggleUpvote(ctx, storyID, userID)

		require.NoError(t, err)
		assert.True(t, result.Upvoted)
		assert.False(t, result.Activated)
		assert.Equal(t, models.StoryStatusPitch, result.Status)
	})

	t.Run("upvote reaching threshold activates pitch", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, storyID).Return(pitch(10), nil).Once()
		storyRepo.On("AddUpvote", mock.Anything, mock.Anything, storyID, userID).Return(nil).Once()
		storyRepo.On("CountUpvotes", mock.Anything, mock.Anything, storyID).Return(10, nil).Once()
		storyRepo.On("SetUpvoteCount", mock.Anything, mock.Anything, storyID, 10).Return(nil).Once()
		storyRepo.On("UpdateStatus", mock.Anything, mock.Anything, storyID, models.StoryStatusActive).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		result, err := svc.ToggleUpvote(ctx, storyID, userID)

		require.NoError(t, err)
		assert.True(t, result.Activated)
		assert.Equal(t, models.StoryStatusActive, result.Status)
		storyRepo.AssertExpectations(t)
	})

	t.Run("removing upvote from active story does not revert it", func(t *testing.T) {
		active := &models.Story{ID: storyID, Status: models.StoryStatusActive, VotesNeeded: 10}

		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, storyID).Return(active, nil).Once()
		storyRepo.On("AddUpvote", mock.Anything, mock.Anything, storyID, userID).Return(models.ErrAlreadyVoted).Once()
		storyRepo.On("RemoveUpvote", mock.Anything, mock.Anything, storyID, userID).Return(nil).Once()
		storyRepo.On("CountUpvotes", mock.Anything, mock.Anything, storyID).Return(9, nil).Once()
		storyRepo.On("SetUpvoteCount", mock.Anything, mock.Anything, storyID, 9).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		result, err := svc.ToggleUpvote(ctx, storyID, userID)

		require.NoError(t, err)
		assert.False(t, result.Upvoted)
		assert.Equal(t, models.StoryStatusActive, result.Status)
		storyRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("personal story cannot be upvoted", func(t *testing.T) {
		personal := &models.Story{ID: storyID, Status: models.StoryStatusActive, IsPersonal: true}

		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, storyID).Return(personal, nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		_, err := svc.ToggleUpvote(ctx, storyID, userID)

		assert.ErrorIs(t, err, models.ErrForbidden)
	})
}

func TestStoryService_PauseResume(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	authorID := uuid.New()

	t.Run("author pauses active story", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusActive}, nil).Once()
		storyRepo.On("UpdateStatus", mock.Anything, mock.Anything, storyID, models.StoryStatusPaused).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		err := svc.PauseStory(ctx, storyID, authorID)

		require.NoError(t, err)
		storyRepo.AssertExpectations(t)
	})

	t.Run("only author can pause", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusActive}, nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		err := svc.PauseStory(ctx, storyID, uuid.New())

		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("pitch cannot be paused", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusPitch}, nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		err := svc.PauseStory(ctx, storyID, authorID)

		assert.ErrorIs(t, err, models.ErrStoryNotActive)
	})

	t.Run("resume returns paused story to active", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusPaused}, nil).Once()
		storyRepo.On("UpdateStatus", mock.Anything, mock.Anything, storyID, models.StoryStatusActive).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		err := svc.ResumeStory(ctx, storyID, authorID)

		require.NoError(t, err)
	})

	t.Run("resume rejects story that is not paused", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusActive}, nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		err := svc.ResumeStory(ctx, storyID, authorID)

		assert.ErrorIs(t, err, models.ErrStoryNotActive)
	})
}

func TestStoryService_CompleteStory(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	authorID := uuid.New()

	t.Run("only author can complete", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusActive}, nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), mocks.NewMockPromptRepository(t))
		err := svc.CompleteStory(ctx, storyID, uuid.New())

		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("completes active story and archives open prompts", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusActive}, nil).Once()
		storyRepo.On("UpdateStatus", mock.Anything, mock.Anything, storyID, models.StoryStatusCompleted).Return(nil).Once()
		promptRepo.On("ArchiveOpenForStory", mock.Anything, mock.Anything, storyID).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), promptRepo)
		err := svc.CompleteStory(ctx, storyID, authorID)

		require.NoError(t, err)
		storyRepo.AssertExpectations(t)
		promptRepo.AssertExpectations(t)
	})

	t.Run("completes paused story", func(t *testing.T) {
		storyRepo := mocks.NewMockStoryRepository(t)
		promptRepo := mocks.NewMockPromptRepository(t)
		storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: authorID, Status: models.StoryStatusPaused}, nil).Once()
		storyRepo.On("UpdateStatus", mock.Anything, mock.Anything, storyID, models.StoryStatusCompleted).Return(nil).Once()
		promptRepo.On("ArchiveOpenForStory", mock.Anything, mock.Anything, storyID).Return(nil).Once()

		svc := newStoryService(storyRepo, mocks.NewMockChapterRepository(t), promptRepo)
		err := svc.CompleteStory(ctx, storyID, authorID)

		require.NoError(t, err)
	})
}
