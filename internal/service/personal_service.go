package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/ai"
	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// BetaModeProvider отдает текущее значение настройки бета-режима.
type BetaModeProvider interface {
	BetaMode() bool
}

// PersonalStoryService генерирует главы личных историй синхронно,
// без очереди задач. Глава стоит кредиты: списание идет до генерации,
// при сбое генерации кредиты возвращаются. В бета-режиме генерация бесплатна.
type PersonalStoryService interface {
	GenerateChapter(ctx context.Context, storyID, userID uuid.UUID, direction string) (*models.Chapter, error)

	// PublishPersonalStory превращает личную историю в коллаборативную:
	// история становится публичным питчем и собирает апвоуты заново.
	PublishPersonalStory(ctx context.Context, storyID, userID uuid.UUID) (*models.Story, error)
}

type personalStoryServiceImpl struct {
	db          interfaces.DBTX
	txManager   interfaces.TxManager
	storyRepo   interfaces.StoryRepository
	chapterRepo interfaces.ChapterRepository
	ledger      CreditLedger
	aiClient    interfaces.AIClient
	settings    BetaModeProvider
	logger      *zap.Logger
}

// NewPersonalStoryService создает новый экземпляр PersonalStoryService.
func NewPersonalStoryService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	storyRepo interfaces.StoryRepository,
	chapterRepo interfaces.ChapterRepository,
	ledger CreditLedger,
	aiClient interfaces.AIClient,
	settings BetaModeProvider,
	logger *zap.Logger,
) PersonalStoryService {
	return &personalStoryServiceImpl{
		db:          db,
		txManager:   txManager,
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
		ledger:      ledger,
		aiClient:    aiClient,
		settings:    settings,
		logger:      logger.Named("PersonalStoryService"),
	}
}

// GenerateChapter генерирует следующую главу личной истории.
func (s *personalStoryServiceImpl) GenerateChapter(ctx context.Context, storyID, userID uuid.UUID, direction string) (*models.Chapter, error) {
	if direction == "" || len([]rune(direction)) > models.MaxPromptLength {
		return nil, models.ErrInvalidInput
	}

	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if !story.IsPersonal || story.AuthorID != userID {
		return nil, ErrPermissionDenied
	}
	if story.Status != models.StoryStatusActive {
		return nil, models.ErrStoryNotActive
	}

	previous, err := s.chapterRepo.ListByStory(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	chapterNumber := len(previous) + 1

	// В бета-режиме генерация бесплатна: ни списания, ни возврата
	free := s.settings != nil && s.settings.BetaMode()

	if !free {
		// Списываем до генерации: чужие токены сгорают независимо от результата,
		// но пользователю при сбое кредиты возвращаем
		deductDesc := fmt.Sprintf("Personal chapter generation: story %s, chapter %d", storyID, chapterNumber)
		err = s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
			_, txErr := s.ledger.DeductCreditsTx(ctx, tx, userID, models.PersonalChapterCredits, deductDesc, models.StoryRef(storyID))
			return txErr
		})
		if err != nil {
			return nil, err
		}
	}

	chapter, genErr := s.generate(ctx, story, previous, direction, chapterNumber)
	if genErr != nil {
		if !free {
			s.refund(ctx, userID, storyID, chapterNumber)
		}
		return nil, genErr
	}

	s.logger.Info("Personal chapter generated",
		zap.String("storyID", storyID.String()),
		zap.Int("chapterNumber", chapterNumber),
		zap.Int("wordCount", chapter.WordCount))
	return chapter, nil
}

func (s *personalStoryServiceImpl) generate(ctx context.Context, story *models.Story, previous []*models.Chapter, direction string, chapterNumber int) (*models.Chapter, error) {
	systemPrompt, userPrompt := ai.BuildChapterPrompt(story, previous, direction)

	raw, err := s.aiClient.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		s.logger.Error("Personal chapter generation failed",
			zap.String("storyID", story.ID.String()), zap.Error(err))
		return nil, err
	}

	parsed := ai.ParseChapterResponse(raw, chapterNumber)
	wordCount := models.CountWords(parsed.Content)

	chapter := &models.Chapter{
		ID:              uuid.New(),
		StoryID:         story.ID,
		ChapterNumber:   chapterNumber,
		Title:           parsed.Title,
		Content:         parsed.Content,
		WordCount:       wordCount,
		ReadTimeMinutes: models.CalculateReadTime(wordCount),
	}
	if err := s.chapterRepo.Create(ctx, s.db, chapter); err != nil {
		if errors.Is(err, models.ErrChapterAlreadyExists) {
			// Параллельный запрос успел создать главу этого слота
			return nil, err
		}
		return nil, err
	}
	return chapter, nil
}

// PublishPersonalStory делает личную историю коллаборативной.
// Переход одноразовый: обратно в личную историю вернуться нельзя.
func (s *personalStoryServiceImpl) PublishPersonalStory(ctx context.Context, storyID, userID uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != userID {
		return nil, ErrPermissionDenied
	}
	if !story.IsPersonal {
		return nil, models.ErrInvalidInput
	}

	if err := s.storyRepo.PublishPersonal(ctx, s.db, storyID); err != nil {
		return nil, err
	}

	story.IsPersonal = false
	story.Status = models.StoryStatusPitch
	story.UpvoteCount = 0
	s.logger.Info("Personal story published",
		zap.String("storyID", storyID.String()),
		zap.String("authorID", userID.String()))
	return story, nil
}

// refund возвращает кредиты за несостоявшуюся генерацию.
func (s *personalStoryServiceImpl) refund(ctx context.Context, userID, storyID uuid.UUID, chapterNumber int) {
	desc := fmt.Sprintf("Refund: failed chapter generation, story %s, chapter %d", storyID, chapterNumber)
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		_, txErr := s.ledger.AddCreditsTx(ctx, tx, userID, models.PersonalChapterCredits,
			models.TransactionTypeRefund, desc, models.StoryRef(storyID))
		return txErr
	})
	if err != nil {
		// Самый неприятный сценарий: генерация упала и возврат не прошел.
		// Оставляем подробный след для ручного разбора.
		s.logger.Error("CRITICAL: failed to refund credits after generation failure",
			zap.String("userID", userID.String()),
			zap.String("storyID", storyID.String()),
			zap.Int("chapterNumber", chapterNumber),
			zap.Error(err))
	}
}
