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
	createChapterQuery = `
        INSERT INTO chapters (id, story_id, chapter_number, title, content, winning_prompt_id, word_count, read_time_minutes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	getChapterByIDQuery = `
        SELECT id, story_id, chapter_number, title, content, winning_prompt_id, word_count, read_time_minutes, created_at
        FROM chapters WHERE id = $1`

	getChapterBySlotQuery = `
        SELECT id, story_id, chapter_number, title, content, winning_prompt_id, word_count, read_time_minutes, created_at
        FROM chapters WHERE story_id = $1 AND chapter_number = $2`

	chapterExistsForSlotQuery = `SELECT EXISTS (SELECT 1 FROM chapters WHERE story_id = $1 AND chapter_number = $2)`

	listChaptersByStoryQuery = `
        SELECT id, story_id, chapter_number, title, content, winning_prompt_id, word_count, read_time_minutes, created_at
        FROM chapters WHERE story_id = $1 ORDER BY chapter_number ASC`

	maxChapterNumberQuery = `SELECT COALESCE(MAX(chapter_number), 0) FROM chapters WHERE story_id = $1`
)

// pgChapterRepository реализует интерфейс ChapterRepository для PostgreSQL.
type pgChapterRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.ChapterRepository = (*pgChapterRepository)(nil)

// NewPgChapterRepository создает новый экземпляр репозитория глав.
func NewPgChapterRepository(logger *zap.Logger) interfaces.ChapterRepository {
	return &pgChapterRepository{logger: logger.Named("PgChapterRepo")}
}

// Create сохраняет главу.
func (r *pgChapterRepository) Create(ctx context.Context, querier interfaces.DBTX, chapter *models.Chapter) error {
	logFields := []zap.Field{
		zap.String("storyID", chapter.StoryID.String()),
		zap.Int("chapterNumber", chapter.ChapterNumber),
	}

	_, err := querier.Exec(ctx, createChapterQuery,
		chapter.ID, chapter.StoryID, chapter.ChapterNumber, chapter.Title,
		chapter.Content, chapter.WinningPromptID, chapter.WordCount, chapter.ReadTimeMinutes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation: глава для слота уже есть
				r.logger.Warn("Chapter already exists for slot", logFields...)
				return models.ErrChapterAlreadyExists
			case "23503": // foreign_key_violation
				r.logger.Warn("Story not found (foreign key violation)", logFields...)
				return models.ErrStoryNotFound
			}
		}
		r.logger.Error("Failed to create chapter", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	r.logger.Info("Chapter created", append(logFields, zap.String("chapterID", chapter.ID.String()))...)
	return nil
}

// GetByID возвращает главу по ID.
func (r *pgChapterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Chapter, error) {
	var chapter models.Chapter
	err := pgxscan.Get(ctx, querier, &chapter, getChapterByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChapterNotFound
		}
		r.logger.Error("Failed to get chapter by ID", zap.String("chapterID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get chapter %s: %w", id, err)
	}
	return &chapter, nil
}

// GetBySlot возвращает главу по (storyID, chapterNumber).
func (r *pgChapterRepository) GetBySlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) (*models.Chapter, error) {
	var chapter models.Chapter
	err := pgxscan.Get(ctx, querier, &chapter, getChapterBySlotQuery, storyID, chapterNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChapterNotFound
		}
		r.logger.Error("Failed to get chapter by slot",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to get chapter by slot: %w", err)
	}
	return &chapter, nil
}

// ExistsForSlot проверяет, создана ли уже глава для слота.
func (r *pgChapterRepository) ExistsForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) (bool, error) {
	var exists bool
	err := querier.QueryRow(ctx, chapterExistsForSlotQuery, storyID, chapterNumber).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check chapter existence",
			zap.String("storyID", storyID.String()), zap.Int("chapterNumber", chapterNumber), zap.Error(err))
		return false, fmt.Errorf("failed to check chapter existence: %w", err)
	}
	return exists, nil
}

// ListByStory возвращает главы истории по порядку номеров.
func (r *pgChapterRepository) ListByStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.Chapter, error) {
	var chapters []*models.Chapter
	err := pgxscan.Select(ctx, querier, &chapters, listChaptersByStoryQuery, storyID)
	if err != nil {
		r.logger.Error("Failed to list chapters", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	if chapters == nil {
		chapters = []*models.Chapter{}
	}
	return chapters, nil
}

// MaxChapterNumber возвращает номер последней главы истории (0, если глав нет).
func (r *pgChapterRepository) MaxChapterNumber(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) (int, error) {
	var maxNumber int
	err := querier.QueryRow(ctx, maxChapterNumberQuery, storyID).Scan(&maxNumber)
	if err != nil {
		r.logger.Error("Failed to get max chapter number", zap.String("storyID", storyID.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to get max chapter number: %w", err)
	}
	return maxNumber, nil
}
