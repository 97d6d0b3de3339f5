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
	createVoteQuery = `
        INSERT INTO prompt_votes (id, prompt_id, user_id, story_id, chapter_number, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`

	getVoteForSlotQuery = `
        SELECT id, prompt_id, user_id, story_id, chapter_number, created_at
        FROM prompt_votes WHERE story_id = $1 AND chapter_number = $2 AND user_id = $3`

	deleteVoteQuery = `DELETE FROM prompt_votes WHERE id = $1`

	countVotesForPromptQuery = `SELECT COUNT(*) FROM prompt_votes WHERE prompt_id = $1`

	listVotedPromptIDsQuery = `
        SELECT prompt_id FROM prompt_votes
        WHERE story_id = $1 AND chapter_number = $2 AND user_id = $3`
)

// pgVoteRepository реализует интерфейс VoteRepository для PostgreSQL.
type pgVoteRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.VoteRepository = (*pgVoteRepository)(nil)

// NewPgVoteRepository создает новый экземпляр репозитория голосов.
func NewPgVoteRepository(logger *zap.Logger) interfaces.VoteRepository {
	return &pgVoteRepository{logger: logger.Named("PgVoteRepo")}
}

// Create сохраняет голос.
func (r *pgVoteRepository) Create(ctx context.Context, querier interfaces.DBTX, vote *models.PromptVote) error {
	logFields := []zap.Field{
		zap.String("promptID", vote.PromptID.String()),
		zap.String("userID", vote.UserID.String()),
	}

	_, err := querier.Exec(ctx, createVoteQuery,
		vote.ID, vote.PromptID, vote.UserID, vote.StoryID, vote.ChapterNumber)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation: один голос на слот
				r.logger.Warn("Vote already exists for this slot", logFields...)
				return models.ErrAlreadyVoted
			case "23503": // foreign_key_violation
				r.logger.Warn("Prompt not found (foreign key violation)", logFields...)
				return models.ErrPromptNotFound
			}
		}
		r.logger.Error("Failed to create vote", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create vote: %w", err)
	}

	r.logger.Debug("Vote created", logFields...)
	return nil
}

// GetForSlot возвращает голос пользователя в слоте.
func (r *pgVoteRepository) GetForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int, userID uuid.UUID) (*models.PromptVote, error) {
	var vote models.PromptVote
	err := pgxscan.Get(ctx, querier, &vote, getVoteForSlotQuery, storyID, chapterNumber, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get vote for slot",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

// Delete удаляет голос по ID.
func (r *pgVoteRepository) Delete(ctx context.Context, querier interfaces.DBTX, voteID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, deleteVoteQuery, voteID)
	if err != nil {
		r.logger.Error("Failed to delete vote", zap.String("voteID", voteID.String()), zap.Error(err))
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountForPrompt возвращает фактическое число голосов за промпт.
func (r *pgVoteRepository) CountForPrompt(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID) (int, error) {
	var count int
	err := querier.QueryRow(ctx, countVotesForPromptQuery, promptID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count votes for prompt", zap.String("promptID", promptID.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// ListVotedPromptIDs возвращает ID промптов слота, за которые голосовал пользователь.
func (r *pgVoteRepository) ListVotedPromptIDs(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := pgxscan.Select(ctx, querier, &ids, listVotedPromptIDsQuery, storyID, chapterNumber, userID)
	if err != nil {
		r.logger.Error("Failed to list voted prompt IDs",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to list voted prompt IDs: %w", err)
	}
	return ids, nil
}
