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
	// Процент чтения монотонно не убывает: берем максимум старого и нового
	// значения. Время чтения накапливается по всем сессиям.
	upsertChapterViewQuery = `
        INSERT INTO chapter_views (id, chapter_id, user_id, read_percentage, time_spent_seconds, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (chapter_id, user_id) DO UPDATE SET
            read_percentage = GREATEST(chapter_views.read_percentage, EXCLUDED.read_percentage),
            time_spent_seconds = chapter_views.time_spent_seconds + EXCLUDED.time_spent_seconds,
            updated_at = NOW()
        RETURNING id, chapter_id, user_id, read_percentage, time_spent_seconds, created_at, updated_at`

	getChapterViewQuery = `
        SELECT id, chapter_id, user_id, read_percentage, time_spent_seconds, created_at, updated_at
        FROM chapter_views WHERE chapter_id = $1 AND user_id = $2`

	countQualifiedReadersQuery = `
        SELECT COUNT(DISTINCT cv.user_id)
        FROM chapter_views cv
        JOIN chapters c ON c.id = cv.chapter_id
        WHERE c.story_id = $1 AND cv.read_percentage >= $2`
)

// pgReadingRepository реализует интерфейс ReadingRepository для PostgreSQL.
type pgReadingRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.ReadingRepository = (*pgReadingRepository)(nil)

// NewPgReadingRepository создает новый экземпляр репозитория прогресса чтения.
func NewPgReadingRepository(logger *zap.Logger) interfaces.ReadingRepository {
	return &pgReadingRepository{logger: logger.Named("PgReadingRepo")}
}

// UpsertView создает или обновляет прогресс чтения главы.
func (r *pgReadingRepository) UpsertView(ctx context.Context, querier interfaces.DBTX, view *models.ChapterView) (*models.ChapterView, error) {
	logFields := []zap.Field{
		zap.String("chapterID", view.ChapterID.String()),
		zap.String("userID", view.UserID.String()),
	}

	var saved models.ChapterView
	err := pgxscan.Get(ctx, querier, &saved, upsertChapterViewQuery,
		view.ID, view.ChapterID, view.UserID, view.ReadPercentage, view.TimeSpentSeconds)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			r.logger.Warn("Chapter not found (foreign key violation)", logFields...)
			return nil, models.ErrChapterNotFound
		}
		r.logger.Error("Failed to upsert chapter view", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to upsert chapter view: %w", err)
	}

	r.logger.Debug("Chapter view upserted", append(logFields, zap.Int("readPercentage", saved.ReadPercentage))...)
	return &saved, nil
}

// GetView возвращает прогресс пользователя по главе.
func (r *pgReadingRepository) GetView(ctx context.Context, querier interfaces.DBTX, chapterID, userID uuid.UUID) (*models.ChapterView, error) {
	var view models.ChapterView
	err := pgxscan.Get(ctx, querier, &view, getChapterViewQuery, chapterID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get chapter view",
			zap.String("chapterID", chapterID.String()), zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get chapter view: %w", err)
	}
	return &view, nil
}

// CountQualifiedReaders возвращает число уникальных читателей истории,
// прочитавших хотя бы одну главу не менее чем на minPercentage.
func (r *pgReadingRepository) CountQualifiedReaders(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, minPercentage int) (int, error) {
	var count int
	err := querier.QueryRow(ctx, countQualifiedReadersQuery, storyID, minPercentage).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count qualified readers", zap.String("storyID", storyID.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to count qualified readers: %w", err)
	}
	return count, nil
}
