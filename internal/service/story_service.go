package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// StoryService управляет жизненным циклом историй: питчи, апвоуты,
// активация, пауза, завершение, подписки.
type StoryService interface {
	CreateStory(ctx context.Context, params CreateStoryParams) (*models.Story, error)
	GetStory(ctx context.Context, storyID uuid.UUID, viewerID *uuid.UUID) (*models.Story, error)
	ListStories(ctx context.Context, filter interfaces.StoryListFilter) ([]*models.Story, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Story, error)
	ToggleUpvote(ctx context.Context, storyID, userID uuid.UUID) (*models.UpvoteResult, error)
	PauseStory(ctx context.Context, storyID, authorID uuid.UUID) error
	ResumeStory(ctx context.Context, storyID, authorID uuid.UUID) error
	CompleteStory(ctx context.Context, storyID, authorID uuid.UUID) error
	Subscribe(ctx context.Context, storyID, userID uuid.UUID) error
	Unsubscribe(ctx context.Context, storyID, userID uuid.UUID) error
}

// CreateStoryParams — параметры создания истории.
type CreateStoryParams struct {
	AuthorID      uuid.UUID
	Title         string
	Description   string
	Genre         string
	Language      string
	Characters    string
	Outline       string
	WorldBuilding string
	Themes        string
	IsPersonal    bool
	VotesNeeded   int // 0 — взять порог из настроек
}

// VotesNeededProvider отдает текущий порог апвоутов для активации питча.
type VotesNeededProvider interface {
	VotesNeeded() int
}

type storyServiceImpl struct {
	db          interfaces.DBTX
	txManager   interfaces.TxManager
	storyRepo   interfaces.StoryRepository
	chapterRepo interfaces.ChapterRepository
	promptRepo  interfaces.PromptRepository
	settings    VotesNeededProvider
	logger      *zap.Logger
}

// NewStoryService создает новый экземпляр StoryService.
func NewStoryService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	storyRepo interfaces.StoryRepository,
	chapterRepo interfaces.ChapterRepository,
	promptRepo interfaces.PromptRepository,
	settings VotesNeededProvider,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		db:          db,
		txManager:   txManager,
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
		promptRepo:  promptRepo,
		settings:    settings,
		logger:      logger.Named("StoryService"),
	}
}

// CreateStory создает историю. Публичные истории начинают жизнь питчем,
// личные сразу активны (главы генерируются только для автора).
func (s *storyServiceImpl) CreateStory(ctx context.Context, params CreateStoryParams) (*models.Story, error) {
	if params.Title == "" || params.Description == "" {
		return nil, models.ErrInvalidInput
	}

	votesNeeded := params.VotesNeeded
	if votesNeeded <= 0 {
		votesNeeded = s.settings.VotesNeeded()
	}

	status := models.StoryStatusPitch
	if params.IsPersonal {
		// Личная история не собирает апвоуты
		status = models.StoryStatusActive
	}

	story := &models.Story{
		ID:            uuid.New(),
		AuthorID:      params.AuthorID,
		Title:         params.Title,
		Description:   params.Description,
		Genre:         params.Genre,
		Language:      params.Language,
		Characters:    params.Characters,
		Outline:       params.Outline,
		WorldBuilding: params.WorldBuilding,
		Themes:        params.Themes,
		Status:        status,
		IsPersonal:    params.IsPersonal,
		VotesNeeded:   votesNeeded,
	}

	if err := s.storyRepo.Create(ctx, s.db, story); err != nil {
		s.logger.Error("Failed to create story", zap.String("authorID", params.AuthorID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Story created",
		zap.String("storyID", story.ID.String()),
		zap.String("status", string(story.Status)),
		zap.Bool("isPersonal", story.IsPersonal))
	return story, nil
}

// GetStory возвращает историю, дополняя ее состоянием для зрителя.
func (s *storyServiceImpl) GetStory(ctx context.Context, storyID uuid.UUID, viewerID *uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}

	count, err := s.chapterRepo.MaxChapterNumber(ctx, s.db, storyID)
	if err != nil {
		s.logger.Warn("Failed to count chapters", zap.String("storyID", storyID.String()), zap.Error(err))
	} else {
		story.ChapterCount = count
	}

	if viewerID != nil {
		upvoted, err := s.storyRepo.HasUpvoted(ctx, s.db, storyID, *viewerID)
		if err != nil {
			s.logger.Warn("Failed to check upvote state", zap.String("storyID", storyID.String()), zap.Error(err))
		} else {
			story.IsUpvoted = upvoted
		}
	}

	return story, nil
}

// ListStories возвращает публичные истории по фильтру.
func (s *storyServiceImpl) ListStories(ctx context.Context, filter interfaces.StoryListFilter) ([]*models.Story, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.storyRepo.List(ctx, s.db, filter)
}

// ListByAuthor возвращает истории автора.
func (s *storyServiceImpl) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Story, error) {
	return s.storyRepo.ListByAuthor(ctx, s.db, authorID)
}

// ToggleUpvote переключает апвоут питча.
// Вся операция идет в одной транзакции с блокировкой строки истории:
// добавление/удаление апвоута, пересчет счетчика из строк и, при достижении
// порога, одноразовый переход pitch -> active. Переход необратим — снятие
// апвоутов активную историю обратно в питч не возвращает.
func (s *storyServiceImpl) ToggleUpvote(ctx context.Context, storyID, userID uuid.UUID) (*models.UpvoteResult, error) {
	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.String("userID", userID.String()),
	}

	var result models.UpvoteResult
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		story, err := s.storyRepo.GetByIDForUpdate(ctx, tx, storyID)
		if err != nil {
			return err
		}

		if story.IsPersonal {
			return models.ErrForbidden
		}

		addErr := s.storyRepo.AddUpvote(ctx, tx, storyID, userID)
		switch {
		case addErr == nil:
			result.Upvoted = true
		case errors.Is(addErr, models.ErrAlreadyVoted):
			// Повторный апвоут снимает предыдущий
			if err := s.storyRepo.RemoveUpvote(ctx, tx, storyID, userID); err != nil {
				return err
			}
			result.Upvoted = false
		default:
			return addErr
		}

		// Счетчик всегда пересчитывается из фактических строк
		count, err := s.storyRepo.CountUpvotes(ctx, tx, storyID)
		if err != nil {
			return err
		}
		if err := s.storyRepo.SetUpvoteCount(ctx, tx, storyID, count); err != nil {
			return err
		}

		result.UpvoteCount = count
		result.Status = story.Status

		if story.Status == models.StoryStatusPitch && count >= story.VotesNeeded {
			if err := s.storyRepo.UpdateStatus(ctx, tx, storyID, models.StoryStatusActive); err != nil {
				return err
			}
			result.Status = models.StoryStatusActive
			result.Activated = true
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrStoryNotFound) && !errors.Is(err, models.ErrForbidden) {
			s.logger.Error("Failed to toggle upvote", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	if result.Activated {
		s.logger.Info("Pitch reached upvote threshold and was activated",
			append(logFields, zap.Int("upvoteCount", result.UpvoteCount))...)
	}
	return &result, nil
}

// PauseStory приостанавливает активную историю. Доступно только автору.
// На паузе промпты не принимаются, уже открытые слоты не трогаем.
func (s *storyServiceImpl) PauseStory(ctx context.Context, storyID, authorID uuid.UUID) error {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != authorID {
		return ErrPermissionDenied
	}
	if story.Status != models.StoryStatusActive {
		return models.ErrStoryNotActive
	}

	if err := s.storyRepo.UpdateStatus(ctx, s.db, storyID, models.StoryStatusPaused); err != nil {
		return err
	}

	s.logger.Info("Story paused", zap.String("storyID", storyID.String()))
	return nil
}

// ResumeStory возвращает приостановленную историю в активное состояние.
func (s *storyServiceImpl) ResumeStory(ctx context.Context, storyID, authorID uuid.UUID) error {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != authorID {
		return ErrPermissionDenied
	}
	if story.Status != models.StoryStatusPaused {
		return models.ErrStoryNotActive
	}

	if err := s.storyRepo.UpdateStatus(ctx, s.db, storyID, models.StoryStatusActive); err != nil {
		return err
	}

	s.logger.Info("Story resumed", zap.String("storyID", storyID.String()))
	return nil
}

// CompleteStory завершает историю. Доступно только автору.
// Открытые промпты незакрытых слотов уходят в архив вместе со сменой статуса.
func (s *storyServiceImpl) CompleteStory(ctx context.Context, storyID, authorID uuid.UUID) error {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != authorID {
		return ErrPermissionDenied
	}
	if story.Status != models.StoryStatusActive && story.Status != models.StoryStatusPaused {
		return models.ErrStoryNotActive
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		if err := s.storyRepo.UpdateStatus(ctx, tx, storyID, models.StoryStatusCompleted); err != nil {
			return err
		}
		return s.promptRepo.ArchiveOpenForStory(ctx, tx, storyID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Story completed", zap.String("storyID", storyID.String()))
	return nil
}

// Subscribe подписывает пользователя на обновления истории.
func (s *storyServiceImpl) Subscribe(ctx context.Context, storyID, userID uuid.UUID) error {
	return s.storyRepo.Subscribe(ctx, s.db, storyID, userID)
}

// Unsubscribe снимает подписку.
func (s *storyServiceImpl) Unsubscribe(ctx context.Context, storyID, userID uuid.UUID) error {
	return s.storyRepo.Unsubscribe(ctx, s.db, storyID, userID)
}
