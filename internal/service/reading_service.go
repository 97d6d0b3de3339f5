package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// ReadingService отслеживает прогресс чтения глав.
type ReadingService interface {
	// RecordProgress записывает прогресс чтения главы. Процент обрезается
	// до [0, 100] и монотонно не убывает, секунды чтения накапливаются.
	// При пересечении порога засчитанного чтения запускается проверка
	// наград автора истории.
	RecordProgress(ctx context.Context, chapterID, userID uuid.UUID, percentage, timeSpentSeconds int) (*models.ChapterView, error)

	// GetProgress возвращает прогресс пользователя по главе (nil, если записи нет).
	GetProgress(ctx context.Context, chapterID, userID uuid.UUID) (*models.ChapterView, error)

	// GetChapter возвращает главу по ID.
	GetChapter(ctx context.Context, chapterID uuid.UUID) (*models.Chapter, error)

	// ListChapters возвращает главы истории по порядку номеров.
	ListChapters(ctx context.Context, storyID uuid.UUID) ([]*models.Chapter, error)
}

type readingServiceImpl struct {
	db          interfaces.DBTX
	chapterRepo interfaces.ChapterRepository
	readingRepo interfaces.ReadingRepository
	rewards     RewardService
	readerCache interfaces.ReaderCountCache
	logger      *zap.Logger
}

// NewReadingService создает новый экземпляр ReadingService.
func NewReadingService(
	db interfaces.DBTX,
	chapterRepo interfaces.ChapterRepository,
	readingRepo interfaces.ReadingRepository,
	rewards RewardService,
	readerCache interfaces.ReaderCountCache,
	logger *zap.Logger,
) ReadingService {
	return &readingServiceImpl{
		db:          db,
		chapterRepo: chapterRepo,
		readingRepo: readingRepo,
		rewards:     rewards,
		readerCache: readerCache,
		logger:      logger.Named("ReadingService"),
	}
}

// RecordProgress записывает прогресс чтения главы.
func (s *readingServiceImpl) RecordProgress(ctx context.Context, chapterID, userID uuid.UUID, percentage, timeSpentSeconds int) (*models.ChapterView, error) {
	percentage = models.ClampReadPercentage(percentage)
	if timeSpentSeconds < 0 {
		timeSpentSeconds = 0
	}

	chapter, err := s.chapterRepo.GetByID(ctx, s.db, chapterID)
	if err != nil {
		return nil, err
	}

	previous, err := s.readingRepo.GetView(ctx, s.db, chapterID, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	view := &models.ChapterView{
		ID:               uuid.New(),
		ChapterID:        chapterID,
		UserID:           userID,
		ReadPercentage:   percentage,
		TimeSpentSeconds: timeSpentSeconds,
	}
	saved, err := s.readingRepo.UpsertView(ctx, s.db, view)
	if err != nil {
		s.logger.Error("Failed to record reading progress",
			zap.String("chapterID", chapterID.String()),
			zap.String("userID", userID.String()),
			zap.Error(err))
		return nil, err
	}

	// Читатель пересек порог засчитанного чтения впервые для этой главы —
	// число квалифицированных читателей могло измениться
	crossed := saved.ReadPercentage >= models.MinReadPercentage &&
		(previous == nil || previous.ReadPercentage < models.MinReadPercentage)
	if crossed {
		if s.readerCache != nil {
			if err := s.readerCache.Invalidate(ctx, chapter.StoryID); err != nil {
				s.logger.Warn("Failed to invalidate reader count cache", zap.Error(err))
			}
		}
		if _, err := s.rewards.ProcessReadingMilestones(ctx, chapter.StoryID); err != nil {
			// Награды не должны ломать запись прогресса
			s.logger.Error("Failed to process reading milestones",
				zap.String("storyID", chapter.StoryID.String()), zap.Error(err))
		}
	}

	return saved, nil
}

// GetChapter возвращает главу по ID.
func (s *readingServiceImpl) GetChapter(ctx context.Context, chapterID uuid.UUID) (*models.Chapter, error) {
	return s.chapterRepo.GetByID(ctx, s.db, chapterID)
}

// ListChapters возвращает главы истории.
func (s *readingServiceImpl) ListChapters(ctx context.Context, storyID uuid.UUID) ([]*models.Chapter, error) {
	return s.chapterRepo.ListByStory(ctx, s.db, storyID)
}

// GetProgress возвращает прогресс пользователя по главе.
func (s *readingServiceImpl) GetProgress(ctx context.Context, chapterID, userID uuid.UUID) (*models.ChapterView, error) {
	view, err := s.readingRepo.GetView(ctx, s.db, chapterID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return view, nil
}
