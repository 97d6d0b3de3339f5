package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

const (
	createPromptQuery = `
        INSERT INTO prompts (id, story_id, author_id, chapter_number, text, vote_count, status, voting_ends_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	getPromptByIDQuery = `
        SELECT id, story_id, author_id, chapter_number, text, vote_count, status, voting_ends_at, created_at
        FROM prompts WHERE id = $1`

	listPromptsForSlotQuery = `
        SELECT id, story_id, author_id, chapter_number, text, vote_count, status, voting_ends_at, created_at
        FROM prompts WHERE story_id = $1 AND chapter_number = $2
        ORDER BY vote_count DESC, created_at ASC`

	getTopPromptForSlotQuery = listPromptsForSlotQuery + ` LIMIT 1`

	setPromptVoteCountQuery = `UPDATE prompts SET vote_count = $2 WHERE id = $1`

	setPromptStatusQuery = `UPDATE prompts SET status = $2 WHERE id = $1`

	markPromptWinnerQuery = `UPDATE prompts SET status = 'winner' WHERE id = $1`

	rejectPromptSiblingsQuery = `
        UPDATE prompts SET status = 'rejected'
        WHERE story_id = $1 AND chapter_number = $2 AND id <> $3 AND status IN ('active', 'voting')`

	archivePromptsForStoryQuery = `
        UPDATE prompts SET status = 'archived'
        WHERE story_id = $1 AND status IN ('active', 'voting')`
)

// pgPromptRepository реализует интерфейс PromptRepository для PostgreSQL.
type pgPromptRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.PromptRepository = (*pgPromptRepository)(nil)

// NewPgPromptRepository создает новый экземпляр репозитория промптов.
func NewPgPromptRepository(logger *zap.Logger) interfaces.PromptRepository {
	return &pgPromptRepository{logger: logger.Named("PgPromptRepo")}
}

// Create сохраняет новый промпт.
func (r *pgPromptRepository) Create(ctx context.Context, querier interfaces.DBTX, prompt *models.Prompt) error {
	logFields := []zap.Field{
		zap.String("storyID", prompt.StoryID.String()),
		zap.Int("chapterNumber", prompt.ChapterNumber),
		zap.String("authorID", prompt.AuthorID.String()),
	}

	_, err := querier.Exec(ctx, createPromptQuery,
		prompt.ID, prompt.StoryID, prompt.AuthorID, prompt.ChapterNumber,
		prompt.Text, prompt.VoteCount, prompt.Status, prompt.VotingEndsAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation: один промпт на слот от пользователя
				r.logger.Warn("Prompt already submitted for this slot", logFields...)
				return models.ErrPromptAlreadySubmitted
			case "23503": // foreign_key_violation
				r.logger.Warn("Story not found (foreign key violation)", logFields...)
				return models.ErrStoryNotFound
			}
		}
		r.logger.Error("Failed to create prompt", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create prompt: %w", err)
	}

	r.logger.Info("Prompt created", append(logFields, zap.String("promptID", prompt.ID.String()))...)
	return nil
}

// GetByID возвращает промпт по ID.
func (r *pgPromptRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	err := pgxscan.Get(ctx, querier, &prompt, getPromptByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPromptNotFound
		}
		r.logger.Error("Failed to get prompt by ID", zap.String("promptID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get prompt %s: %w", id, err)
	}
	return &prompt, nil
}

// ListForSlot возвращает промпты слота, отсортированные по голосам.
func (r *pgPromptRepository) ListForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) ([]*models.Prompt, error) {
	var prompts []*models.Prompt
	err := pgxscan.Select(ctx, querier, &prompts, listPromptsForSlotQuery, storyID, chapterNumber)
	if err != nil {
		r.logger.Error("Failed to list prompts for slot",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	if prompts == nil {
		prompts = []*models.Prompt{}
	}
	return prompts, nil
}

// GetTopForSlot возвращает промпт-лидер слота.
func (r *pgPromptRepository) GetTopForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) (*models.Prompt, error) {
	var prompt models.Prompt
	err := pgxscan.Get(ctx, querier, &prompt, getTopPromptForSlotQuery, storyID, chapterNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPromptNotFound
		}
		r.logger.Error("Failed to get top prompt for slot",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to get top prompt: %w", err)
	}
	return &prompt, nil
}

// SetVoteCount записывает пересчитанный счетчик голосов.
func (r *pgPromptRepository) SetVoteCount(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID, count int) error {
	commandTag, err := querier.Exec(ctx, setPromptVoteCountQuery, promptID, count)
	if err != nil {
		r.logger.Error("Failed to set vote count", zap.String("promptID", promptID.String()), zap.Error(err))
		return fmt.Errorf("failed to set vote count: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrPromptNotFound
	}
	return nil
}

// SetStatus переводит промпт в указанный статус.
func (r *pgPromptRepository) SetStatus(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID, status models.PromptStatus) error {
	commandTag, err := querier.Exec(ctx, setPromptStatusQuery, promptID, status)
	if err != nil {
		r.logger.Error("Failed to set prompt status",
			zap.String("promptID", promptID.String()), zap.String("status", string(status)), zap.Error(err))
		return fmt.Errorf("failed to set prompt status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrPromptNotFound
	}
	return nil
}

// MarkWinner помечает промпт победителем слота.
func (r *pgPromptRepository) MarkWinner(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, markPromptWinnerQuery, promptID)
	if err != nil {
		r.logger.Error("Failed to mark prompt as winner", zap.String("promptID", promptID.String()), zap.Error(err))
		return fmt.Errorf("failed to mark winner: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrPromptNotFound
	}
	r.logger.Info("Prompt marked as winner", zap.String("promptID", promptID.String()))
	return nil
}

// RejectSiblings отклоняет все проигравшие промпты слота, кроме победителя.
func (r *pgPromptRepository) RejectSiblings(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int, winnerID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, rejectPromptSiblingsQuery, storyID, chapterNumber, winnerID)
	if err != nil {
		r.logger.Error("Failed to reject losing prompts",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return fmt.Errorf("failed to reject losing prompts: %w", err)
	}
	r.logger.Debug("Losing prompts rejected",
		zap.String("storyID", storyID.String()),
		zap.Int("chapterNumber", chapterNumber),
		zap.Int64("count", commandTag.RowsAffected()))
	return nil
}

// ArchiveOpenForStory архивирует открытые промпты завершенной истории.
func (r *pgPromptRepository) ArchiveOpenForStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, archivePromptsForStoryQuery, storyID)
	if err != nil {
		r.logger.Error("Failed to archive prompts", zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to archive prompts: %w", err)
	}
	r.logger.Debug("Open prompts archived",
		zap.String("storyID", storyID.String()), zap.Int64("count", commandTag.RowsAffected()))
	return nil
}
