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

type readingMocks struct {
	chapterRepo *mocks.MockChapterRepository
	readingRepo *mocks.MockReadingRepository
	rewards     *mocks.MockRewardService
	readerCache *mocks.MockReaderCountCache
}

func newReadingService(t *testing.T) (service.ReadingService, readingMocks) {
	m := readingMocks{
		chapterRepo: mocks.NewMockChapterRepository(t),
		readingRepo: mocks.NewMockReadingRepository(t),
		rewards:     mocks.NewMockRewardService(t),
		readerCache: mocks.NewMockReaderCountCache(t),
	}
	svc := service.NewReadingService(nil, m.chapterRepo, m.readingRepo, m.rewards, m.readerCache, zap.NewNop())
	return svc, m
}

func TestReadingService_RecordProgress(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	chapterID := uuid.New()
	userID := uuid.New()

	chapter := &models.Chapter{ID: chapterID, StoryID: storyID, ChapterNumber: 1}

	t.Run("accumulates reading time alongside percentage", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.chapterRepo.On("GetByID", mock.Anything, mock.Anything, chapterID).Return(chapter, nil).Once()
		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(nil, models.ErrNotFound).Once()
		m.readingRepo.On("UpsertView", mock.Anything, mock.Anything, mock.MatchedBy(func(v *models.ChapterView) bool {
			return v.ChapterID == chapterID && v.UserID == userID &&
				v.ReadPercentage == 40 && v.TimeSpentSeconds == 90
		})).Return(&models.ChapterView{
			ChapterID: chapterID, UserID: userID, ReadPercentage: 40, TimeSpentSeconds: 90,
		}, nil).Once()

		view, err := svc.RecordProgress(ctx, chapterID, userID, 40, 90)

		require.NoError(t, err)
		assert.Equal(t, 90, view.TimeSpentSeconds)
		m.rewards.AssertNotCalled(t, "ProcessReadingMilestones", mock.Anything, mock.Anything)
	})

	t.Run("negative time and out-of-range percentage are clamped", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.chapterRepo.On("GetByID", mock.Anything, mock.Anything, chapterID).Return(chapter, nil).Once()
		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(nil, models.ErrNotFound).Once()
		m.readingRepo.On("UpsertView", mock.Anything, mock.Anything, mock.MatchedBy(func(v *models.ChapterView) bool {
			return v.ReadPercentage == 100 && v.TimeSpentSeconds == 0
		})).Return(&models.ChapterView{ReadPercentage: 100, TimeSpentSeconds: 0}, nil).Once()
		m.readerCache.On("Invalidate", mock.Anything, storyID).Return(nil).Once()
		m.rewards.On("ProcessReadingMilestones", mock.Anything, storyID).Return(0, nil).Once()

		_, err := svc.RecordProgress(ctx, chapterID, userID, 150, -30)

		require.NoError(t, err)
	})

	t.Run("first crossing of the qualified threshold triggers milestone check", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.chapterRepo.On("GetByID", mock.Anything, mock.Anything, chapterID).Return(chapter, nil).Once()
		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(&models.ChapterView{ReadPercentage: models.MinReadPercentage - 10}, nil).Once()
		m.readingRepo.On("UpsertView", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.ChapterView{ReadPercentage: models.MinReadPercentage + 5}, nil).Once()
		m.readerCache.On("Invalidate", mock.Anything, storyID).Return(nil).Once()
		m.rewards.On("ProcessReadingMilestones", mock.Anything, storyID).Return(5, nil).Once()

		_, err := svc.RecordProgress(ctx, chapterID, userID, models.MinReadPercentage+5, 10)

		require.NoError(t, err)
		m.rewards.AssertExpectations(t)
	})

	t.Run("already qualified reader does not re-trigger milestones", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.chapterRepo.On("GetByID", mock.Anything, mock.Anything, chapterID).Return(chapter, nil).Once()
		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(&models.ChapterView{ReadPercentage: models.MinReadPercentage + 1}, nil).Once()
		m.readingRepo.On("UpsertView", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.ChapterView{ReadPercentage: 100}, nil).Once()

		_, err := svc.RecordProgress(ctx, chapterID, userID, 100, 10)

		require.NoError(t, err)
		m.rewards.AssertNotCalled(t, "ProcessReadingMilestones", mock.Anything, mock.Anything)
		m.readerCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("milestone failure does not break progress recording", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.chapterRepo.On("GetByID", mock.Anything, mock.Anything, chapterID).Return(chapter, nil).Once()
		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(nil, models.ErrNotFound).Once()
		m.readingRepo.On("UpsertView", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.ChapterView{ReadPercentage: 100}, nil).Once()
		m.readerCache.On("Invalidate", mock.Anything, storyID).Return(nil).Once()
		m.rewards.On("ProcessReadingMilestones", mock.Anything, storyID).
			Return(0, assert.AnError).Once()

		view, err := svc.RecordProgress(ctx, chapterID, userID, 100, 10)

		require.NoError(t, err)
		assert.Equal(t, 100, view.ReadPercentage)
	})

	t.Run("unknown chapter", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.chapterRepo.On("GetByID", mock.Anything, mock.Anything, chapterID).
			Return(nil, models.ErrChapterNotFound).Once()

		_, err := svc.RecordProgress(ctx, chapterID, userID, 50, 10)

		assert.ErrorIs(t, err, models.ErrChapterNotFound)
	})
}

func TestReadingService_GetProgress(t *testing.T) {
	ctx := context.Background()
	chapterID := uuid.New()
	userID := uuid.New()

	t.Run("missing view returns nil without error", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(nil, models.ErrNotFound).Once()

		view, err := svc.GetProgress(ctx, chapterID, userID)

		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("existing view returned as is", func(t *testing.T) {
		svc, m := newReadingService(t)

		m.readingRepo.On("GetView", mock.Anything, mock.Anything, chapterID, userID).
			Return(&models.ChapterView{ReadPercentage: 75, TimeSpentSeconds: 420}, nil).Once()

		view, err := svc.GetProgress(ctx, chapterID, userID)

		require.NoError(t, err)
		assert.Equal(t, 420, view.TimeSpentSeconds)
	})
}
