package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// VotingService управляет промптами глав и голосованием за них.
type VotingService interface {
	SubmitPrompt(ctx context.Context, storyID uuid.UUID, authorID uuid.UUID, text string) (*models.Prompt, error)
	ListPrompts(ctx context.Context, storyID uuid.UUID, chapterNumber int, viewerID *uuid.UUID) ([]*models.Prompt, error)
	CastVote(ctx context.Context, promptID, userID uuid.UUID) (*models.VoteResult, error)
	SelectWinner(ctx context.Context, storyID uuid.UUID, chapterNumber int) (*models.WinnerSelection, error)
}

type votingServiceImpl struct {
	db          interfaces.DBTX
	txManager   interfaces.TxManager
	storyRepo   interfaces.StoryRepository
	promptRepo  interfaces.PromptRepository
	voteRepo    interfaces.VoteRepository
	chapterRepo interfaces.ChapterRepository
	taskPub     interfaces.GenerationTaskPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewVotingService создает новый экземпляр VotingService.
func NewVotingService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	storyRepo interfaces.StoryRepository,
	promptRepo interfaces.PromptRepository,
	voteRepo interfaces.VoteRepository,
	chapterRepo interfaces.ChapterRepository,
	taskPub interfaces.GenerationTaskPublisher,
	logger *zap.Logger,
) VotingService {
	return &votingServiceImpl{
		db:          db,
		txManager:   txManager,
		storyRepo:   storyRepo,
		promptRepo:  promptRepo,
		voteRepo:    voteRepo,
		chapterRepo: chapterRepo,
		taskPub:     taskPub,
		logger:      logger.Named("VotingService"),
		now:         time.Now,
	}
}

// SubmitPrompt подает промпт для следующего слота главы активной истории.
// Один пользователь — один промпт на слот.
func (s *votingServiceImpl) SubmitPrompt(ctx context.Context, storyID uuid.UUID, authorID uuid.UUID, text string) (*models.Prompt, error) {
	if text == "" || len([]rune(text)) > models.MaxPromptLength {
		return nil, models.ErrInvalidInput
	}

	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if !story.IsAcceptingPrompts() {
		return nil, models.ErrStoryNotActive
	}

	// Слот следующей главы — после последней созданной
	lastChapter, err := s.chapterRepo.MaxChapterNumber(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	chapterNumber := lastChapter + 1

	prompt := &models.Prompt{
		ID:            uuid.New(),
		StoryID:       storyID,
		AuthorID:      authorID,
		ChapterNumber: chapterNumber,
		Text:          text,
		Status:        models.PromptStatusActive,
		VotingEndsAt:  s.now().Add(models.DefaultVotingPeriod),
	}

	if err := s.promptRepo.Create(ctx, s.db, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("Prompt submitted",
		zap.String("promptID", prompt.ID.String()),
		zap.String("storyID", storyID.String()),
		zap.Int("chapterNumber", chapterNumber))
	return prompt, nil
}

// ListPrompts возвращает промпты слота с отметкой, за какие голосовал зритель.
func (s *votingServiceImpl) ListPrompts(ctx context.Context, storyID uuid.UUID, chapterNumber int, viewerID *uuid.UUID) ([]*models.Prompt, error) {
	prompts, err := s.promptRepo.ListForSlot(ctx, s.db, storyID, chapterNumber)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(prompts) > 0 {
		votedIDs, err := s.voteRepo.ListVotedPromptIDs(ctx, s.db, storyID, chapterNumber, *viewerID)
		if err != nil {
			s.logger.Warn("Failed to load viewer votes", zap.String("storyID", storyID.String()), zap.Error(err))
		} else {
			voted := make(map[uuid.UUID]bool, len(votedIDs))
			for _, id := range votedIDs {
				voted[id] = true
			}
			for _, p := range prompts {
				p.IsVoted = voted[p.ID]
			}
		}
	}

	return prompts, nil
}

// CastVote голосует за промпт. Если у пользователя уже есть голос в этом слоте
// за другой промпт, голос переносится: старый удаляется, новый создается,
// счетчики обоих промптов пересчитываются из фактических строк. Повторный
// голос за тот же промпт — ошибка.
func (s *votingServiceImpl) CastVote(ctx context.Context, promptID, userID uuid.UUID) (*models.VoteResult, error) {
	logFields := []zap.Field{
		zap.String("promptID", promptID.String()),
		zap.String("userID", userID.String()),
	}

	var result models.VoteResult
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		prompt, err := s.promptRepo.GetByID(ctx, tx, promptID)
		if err != nil {
			return err
		}

		// Слот с выбранным победителем (или отклоненный/архивный промпт)
		// голоса больше не принимает
		if !prompt.AcceptsVotes() || !prompt.VotingOpen(s.now()) {
			return models.ErrVotingClosed
		}

		// Ищем существующий голос пользователя в этом слоте
		existing, err := s.voteRepo.GetForSlot(ctx, tx, prompt.StoryID, prompt.ChapterNumber, userID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}

		if existing != nil {
			if existing.PromptID == promptID {
				return models.ErrAlreadyVoted
			}
			// Перенос голоса: удаляем старый, пересчитаем счетчик ниже
			if err := s.voteRepo.Delete(ctx, tx, existing.ID); err != nil {
				return err
			}
			prevID := existing.PromptID
			result.PreviousPromptID = &prevID
			result.Moved = true
		}

		vote := &models.PromptVote{
			ID:            uuid.New(),
			PromptID:      promptID,
			UserID:        userID,
			StoryID:       prompt.StoryID,
			ChapterNumber: prompt.ChapterNumber,
		}
		if err := s.voteRepo.Create(ctx, tx, vote); err != nil {
			return err
		}

		// Пересчитываем счетчики затронутых промптов из строк
		count, err := s.voteRepo.CountForPrompt(ctx, tx, promptID)
		if err != nil {
			return err
		}
		if err := s.promptRepo.SetVoteCount(ctx, tx, promptID, count); err != nil {
			return err
		}
		result.PromptID = promptID
		result.VoteCount = count

		if result.PreviousPromptID != nil {
			prevCount, err := s.voteRepo.CountForPrompt(ctx, tx, *result.PreviousPromptID)
			if err != nil {
				return err
			}
			if err := s.promptRepo.SetVoteCount(ctx, tx, *result.PreviousPromptID, prevCount); err != nil {
				return err
			}
			result.PreviousVoteCount = prevCount
		}

		// Первый голос переводит промпт из active в voting
		if prompt.Status == models.PromptStatusActive {
			if err := s.promptRepo.SetStatus(ctx, tx, promptID, models.PromptStatusVoting); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrPromptNotFound) &&
			!errors.Is(err, models.ErrVotingClosed) &&
			!errors.Is(err, models.ErrAlreadyVoted) {
			s.logger.Error("Failed to cast vote", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	s.logger.Debug("Vote cast", append(logFields, zap.Int("voteCount", result.VoteCount), zap.Bool("moved", result.Moved))...)
	return &result, nil
}

// SelectWinner выбирает промпт-лидер слота после закрытия окна голосования,
// помечает его победителем, отклоняет проигравшие промпты и ставит задачу
// генерации главы. Если глава для слота уже существует, задача не
// публикуется — операция идемпотентна.
func (s *votingServiceImpl) SelectWinner(ctx context.Context, storyID uuid.UUID, chapterNumber int) (*models.WinnerSelection, error) {
	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.Int("chapterNumber", chapterNumber),
	}

	var selection models.WinnerSelection
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		top, err := s.promptRepo.GetTopForSlot(ctx, tx, storyID, chapterNumber)
		if err != nil {
			return err
		}

		if top.Status != models.PromptStatusWinner {
			if top.VotingOpen(s.now()) {
				return models.ErrVotingStillOpen
			}
			if err := s.promptRepo.MarkWinner(ctx, tx, top.ID); err != nil {
				return err
			}
			if err := s.promptRepo.RejectSiblings(ctx, tx, storyID, chapterNumber, top.ID); err != nil {
				return err
			}
			top.Status = models.PromptStatusWinner
		}

		exists, err := s.chapterRepo.ExistsForSlot(ctx, tx, storyID, chapterNumber)
		if err != nil {
			return err
		}

		selection.Prompt = top
		selection.StoryID = storyID
		selection.ChapterNumber = chapterNumber
		selection.TaskPublished = !exists
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrPromptNotFound) && !errors.Is(err, models.ErrVotingStillOpen) {
			s.logger.Error("Failed to select winner", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	if selection.TaskPublished {
		task := models.GenerationTask{
			TaskID:        uuid.NewString(),
			StoryID:       storyID,
			ChapterNumber: chapterNumber,
			PromptID:      selection.Prompt.ID,
			PromptText:    selection.Prompt.Text,
		}
		if err := s.taskPub.PublishGenerationTask(ctx, task); err != nil {
			// Победитель уже помечен, задачу можно поставить повторно
			s.logger.Error("Failed to publish generation task", append(logFields, zap.Error(err))...)
			return nil, err
		}
		s.logger.Info("Winner selected, generation task published",
			append(logFields, zap.String("promptID", selection.Prompt.ID.String()))...)
	} else {
		s.logger.Info("Winner selected, chapter already exists, task skipped", logFields...)
	}

	return &selection, nil
}
