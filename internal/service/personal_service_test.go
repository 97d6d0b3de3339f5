package service_test

import (
	"context"
	"errors"
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

type fixedBetaMode bool

func (f fixedBetaMode) BetaMode() bool { return bool(f) }

type personalMocks struct {
	storyRepo   *mocks.MockStoryRepository
	chapterRepo *mocks.MockChapterRepository
	ledger      *mocks.MockCreditLedger
	aiClient    *mocks.MockAIClient
}

func newPersonalService(t *testing.T, beta fixedBetaMode) (service.PersonalStoryService, personalMocks) {
	m := personalMocks{
		storyRepo:   mocks.NewMockStoryRepository(t),
		chapterRepo: mocks.NewMockChapterRepository(t),
		ledger:      mocks.NewMockCreditLedger(t),
		aiClient:    mocks.NewMockAIClient(t),
	}
	svc := service.NewPersonalStoryService(
		nil,
		&mocks.MockTxManager{},
		m.storyRepo,
		m.chapterRepo,
		m.ledger,
		m.aiClient,
		beta,
		zap.NewNop(),
	)
	return svc, m
}

func TestPersonalStoryService_GenerateChapter(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	userID := uuid.New()

	personalStory := &models.Story{
		ID:          storyID,
		AuthorID:    userID,
		Title:       "My solo adventure",
		Description: "A lone wanderer",
		Genre:       "fantasy",
		Status:      models.StoryStatusActive,
		IsPersonal:  true,
	}

	t.Run("deducts credit, generates and saves chapter", func(t *testing.T) {
		svc, m := newPersonalService(t, false)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory, nil).Once()
		m.chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).
			Return([]*models.Chapter{{ChapterNumber: 1, Title: "Start", Content: "Once upon a time"}}, nil).Once()
		m.ledger.On("DeductCreditsTx", mock.Anything, mock.Anything, userID, models.PersonalChapterCredits,
			mock.Anything, models.StoryRef(storyID)).Return(4, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("TITLE: The Crossing\nCONTENT:\nThe wanderer crossed the river.", nil).Once()
		m.chapterRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(ch *models.Chapter) bool {
			return ch.StoryID == storyID && ch.ChapterNumber == 2 && ch.Title == "The Crossing" && ch.WordCount > 0
		})).Return(nil).Once()

		chapter, err := svc.GenerateChapter(ctx, storyID, userID, "cross the river")

		require.NoError(t, err)
		assert.Equal(t, "The Crossing", chapter.Title)
		assert.Equal(t, 2, chapter.ChapterNumber)
		m.ledger.AssertExpectations(t)
	})

	t.Run("beta mode skips the charge", func(t *testing.T) {
		svc, m := newPersonalService(t, true)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory, nil).Once()
		m.chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("TITLE: Free\nCONTENT:\nOn the house.", nil).Once()
		m.chapterRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.GenerateChapter(ctx, storyID, userID, "direction")

		require.NoError(t, err)
		m.ledger.AssertNotCalled(t, "DeductCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("beta mode failure does not refund", func(t *testing.T) {
		svc, m := newPersonalService(t, true)
		genErr := errors.New("model unavailable")

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory, nil).Once()
		m.chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("", genErr).Once()

		_, err := svc.GenerateChapter(ctx, storyID, userID, "direction")

		assert.ErrorIs(t, err, genErr)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refunds credit when generation fails", func(t *testing.T) {
		svc, m := newPersonalService(t, false)
		genErr := errors.New("model unavailable")

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory, nil).Once()
		m.chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).
			Return([]*models.Chapter{}, nil).Once()
		m.ledger.On("DeductCreditsTx", mock.Anything, mock.Anything, userID, models.PersonalChapterCredits,
			mock.Anything, models.StoryRef(storyID)).Return(4, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("", genErr).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, userID, models.PersonalChapterCredits,
			models.TransactionTypeRefund, mock.Anything, models.StoryRef(storyID)).Return(5, nil).Once()

		_, err := svc.GenerateChapter(ctx, storyID, userID, "direction")

		assert.ErrorIs(t, err, genErr)
		m.ledger.AssertExpectations(t)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		svc, m := newPersonalService(t, false)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory, nil).Once()
		m.chapterRepo.On("ListByStory", mock.Anything, mock.Anything, storyID).
			Return([]*models.Chapter{}, nil).Once()
		m.ledger.On("DeductCreditsTx", mock.Anything, mock.Anything, userID, models.PersonalChapterCredits,
			mock.Anything, models.StoryRef(storyID)).Return(0, models.ErrInsufficientCredits).Once()

		_, err := svc.GenerateChapter(ctx, storyID, userID, "direction")

		assert.ErrorIs(t, err, models.ErrInsufficientCredits)
		m.aiClient.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only the owner generates chapters", func(t *testing.T) {
		svc, m := newPersonalService(t, false)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory, nil).Once()

		_, err := svc.GenerateChapter(ctx, storyID, uuid.New(), "direction")

		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("public story rejected", func(t *testing.T) {
		svc, m := newPersonalService(t, false)
		public := *personalStory
		public.IsPersonal = false

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(&public, nil).Once()

		_, err := svc.GenerateChapter(ctx, storyID, userID, "direction")

		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestPersonalStoryService_PublishPersonalStory(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	userID := uuid.New()

	personalStory := func() *models.Story {
		return &models.Story{
			ID:          storyID,
			AuthorID:    userID,
			Status:      models.StoryStatusActive,
			IsPersonal:  true,
			UpvoteCount: 3,
		}
	}

	t.Run("flips story into a public pitch", func(t *testing.T) {
		svc, m := newPersonalService(t, false)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory(), nil).Once()
		m.storyRepo.On("PublishPersonal", mock.Anything, mock.Anything, storyID).Return(nil).Once()

		story, err := svc.PublishPersonalStory(ctx, storyID, userID)

		require.NoError(t, err)
		assert.False(t, story.IsPersonal)
		assert.Equal(t, models.StoryStatusPitch, story.Status)
		assert.Equal(t, 0, story.UpvoteCount)
		m.storyRepo.AssertExpectations(t)
	})

	t.Run("only the owner publishes", func(t *testing.T) {
		svc, m := newPersonalService(t, false)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(personalStory(), nil).Once()

		_, err := svc.PublishPersonalStory(ctx, storyID, uuid.New())

		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		m.storyRepo.AssertNotCalled(t, "PublishPersonal", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already public story rejected", func(t *testing.T) {
		svc, m := newPersonalService(t, false)
		public := personalStory()
		public.IsPersonal = false

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(public, nil).Once()

		_, err := svc.PublishPersonalStory(ctx, storyID, userID)

		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}
