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
	storyColumns = `id, author_id, title, description, genre, language, characters, outline, world_building, themes, status, cover_image_url, is_personal, upvote_count, votes_needed, created_at, updated_at`

	createStoryQuery = `
        INSERT INTO stories (` + storyColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())`

	getStoryByIDQuery = `
        SELECT ` + storyColumns + `
        FROM stories WHERE id = $1`

	getStoryByIDForUpdateQuery = getStoryByIDQuery + ` FOR UPDATE`

	updateStoryStatusQuery = `UPDATE stories SET status = $2, updated_at = NOW() WHERE id = $1`

	publishPersonalStoryQuery = `
        UPDATE stories SET is_personal = FALSE, status = 'pitch', upvote_count = 0, updated_at = NOW()
        WHERE id = $1 AND is_personal = TRUE`

	setStoryUpvoteCountQuery = `UPDATE stories SET upvote_count = $2, updated_at = NOW() WHERE id = $1`

	addStoryUpvoteQuery = `INSERT INTO story_upvotes (id, story_id, user_id) VALUES ($1, $2, $3)`

	removeStoryUpvoteQuery = `DELETE FROM story_upvotes WHERE story_id = $1 AND user_id = $2`

	hasStoryUpvoteQuery = `SELECT EXISTS (SELECT 1 FROM story_upvotes WHERE story_id = $1 AND user_id = $2)`

	countStoryUpvotesQuery = `SELECT COUNT(*) FROM story_upvotes WHERE story_id = $1`

	subscribeStoryQuery = `
        INSERT INTO story_subscriptions (id, story_id, user_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (story_id, user_id) DO NOTHING`

	unsubscribeStoryQuery = `DELETE FROM story_subscriptions WHERE story_id = $1 AND user_id = $2`

	listStorySubscriberIDsQuery = `SELECT user_id FROM story_subscriptions WHERE story_id = $1 ORDER BY created_at`
)

// pgStoryRepository реализует интерфейс StoryRepository для PostgreSQL.
type pgStoryRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

// NewPgStoryRepository создает новый экземпляр репозитория историй.
func NewPgStoryRepository(logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{logger: logger.Named("PgStoryRepo")}
}

// Create сохраняет новую историю.
func (r *pgStoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	log := r.logger.With(zap.String("storyID", story.ID.String()))

	_, err := querier.Exec(ctx, createStoryQuery,
		story.ID, story.AuthorID, story.Title, story.Description, story.Genre,
		story.Language, story.Characters, story.Outline, story.WorldBuilding, story.Themes,
		story.Status, story.CoverImageURL, story.IsPersonal, story.UpvoteCount, story.VotesNeeded)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation (автор не найден)
			log.Warn("Author not found (foreign key violation)", zap.String("authorID", story.AuthorID.String()))
			return models.ErrUserNotFound
		}
		log.Error("Failed to create story", zap.Error(err))
		return fmt.Errorf("failed to create story: %w", err)
	}

	log.Info("Story created", zap.String("status", string(story.Status)))
	return nil
}

// GetByID возвращает историю по ID.
func (r *pgStoryRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	return r.getByID(ctx, querier, id, getStoryByIDQuery)
}

// GetByIDForUpdate возвращает историю с блокировкой строки.
func (r *pgStoryRepository) GetByIDForUpdate(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	return r.getByID(ctx, querier, id, getStoryByIDForUpdateQuery)
}

func (r *pgStoryRepository) getByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, query string) (*models.Story, error) {
	var story models.Story
	err := pgxscan.Get(ctx, querier, &story, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return &story, nil
}

// List возвращает истории по фильтру, новые первыми.
func (r *pgStoryRepository) List(ctx context.Context, querier interfaces.DBTX, filter interfaces.StoryListFilter) ([]*models.Story, error) {
	query := `
        SELECT ` + storyColumns + `
        FROM stories WHERE is_personal = FALSE`
	args := []any{}
	argN := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, *filter.Status)
		argN++
	}
	if filter.Genre != nil {
		query += fmt.Sprintf(" AND genre = $%d", argN)
		args = append(args, *filter.Genre)
		argN++
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argN, argN+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	var stories []*models.Story
	if err := pgxscan.Select(ctx, querier, &stories, query, args...); err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	if stories == nil {
		stories = []*models.Story{}
	}
	return stories, nil
}

// ListByAuthor возвращает истории автора (включая личные).
func (r *pgStoryRepository) ListByAuthor(ctx context.Context, querier interfaces.DBTX, authorID uuid.UUID) ([]*models.Story, error) {
	query := `
        SELECT ` + storyColumns + `
        FROM stories WHERE author_id = $1 ORDER BY created_at DESC`

	var stories []*models.Story
	if err := pgxscan.Select(ctx, querier, &stories, query, authorID); err != nil {
		r.logger.Error("Failed to list stories by author", zap.String("authorID", authorID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list stories by author: %w", err)
	}
	if stories == nil {
		stories = []*models.Story{}
	}
	return stories, nil
}

// UpdateStatus переводит историю в новый статус.
func (r *pgStoryRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.StoryStatus) error {
	commandTag, err := querier.Exec(ctx, updateStoryStatusQuery, id, status)
	if err != nil {
		r.logger.Error("Failed to update story status", zap.String("storyID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update story status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	r.logger.Info("Story status updated", zap.String("storyID", id.String()), zap.String("status", string(status)))
	return nil
}

// PublishPersonal делает личную историю коллаборативным питчем.
func (r *pgStoryRepository) PublishPersonal(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, publishPersonalStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to publish personal story", zap.String("storyID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to publish personal story: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	r.logger.Info("Personal story published", zap.String("storyID", id.String()))
	return nil
}

// SetUpvoteCount записывает пересчитанный счетчик апвоутов.
func (r *pgStoryRepository) SetUpvoteCount(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, count int) error {
	commandTag, err := querier.Exec(ctx, setStoryUpvoteCountQuery, id, count)
	if err != nil {
		r.logger.Error("Failed to set upvote count", zap.String("storyID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to set upvote count: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}

// AddUpvote добавляет апвоут питча.
func (r *pgStoryRepository) AddUpvote(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	logFields := []zap.Field{zap.String("storyID", storyID.String()), zap.String("userID", userID.String())}

	_, err := querier.Exec(ctx, addStoryUpvoteQuery, uuid.New(), storyID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation (апвоут уже есть)
				r.logger.Warn("Upvote already exists (unique constraint violation)", logFields...)
				return models.ErrAlreadyVoted
			case "23503": // foreign_key_violation (история не найдена)
				r.logger.Warn("Story not found (foreign key violation)", logFields...)
				return models.ErrStoryNotFound
			}
		}
		r.logger.Error("Failed to add upvote", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to add upvote: %w", err)
	}

	r.logger.Debug("Upvote added", logFields...)
	return nil
}

// RemoveUpvote снимает апвоут.
func (r *pgStoryRepository) RemoveUpvote(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, removeStoryUpvoteQuery, storyID, userID)
	if err != nil {
		r.logger.Error("Failed to remove upvote", zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to remove upvote: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound // Апвоута не было
	}
	return nil
}

// HasUpvoted проверяет наличие апвоута пользователя.
func (r *pgStoryRepository) HasUpvoted(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := querier.QueryRow(ctx, hasStoryUpvoteQuery, storyID, userID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check upvote existence", zap.String("storyID", storyID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check upvote existence: %w", err)
	}
	return exists, nil
}

// CountUpvotes возвращает фактическое число апвоутов из строк таблицы.
func (r *pgStoryRepository) CountUpvotes(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) (int, error) {
	var count int
	err := querier.QueryRow(ctx, countStoryUpvotesQuery, storyID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count upvotes", zap.String("storyID", storyID.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to count upvotes: %w", err)
	}
	return count, nil
}

// Subscribe подписывает пользователя на историю (идемпотентно).
func (r *pgStoryRepository) Subscribe(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	_, err := querier.Exec(ctx, subscribeStoryQuery, uuid.New(), storyID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.ErrStoryNotFound
		}
		r.logger.Error("Failed to subscribe to story", zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Unsubscribe снимает подписку.
func (r *pgStoryRepository) Unsubscribe(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, unsubscribeStoryQuery, storyID, userID)
	if err != nil {
		r.logger.Error("Failed to unsubscribe from story", zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListSubscriberIDs возвращает ID подписчиков истории.
func (r *pgStoryRepository) ListSubscriberIDs(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := pgxscan.Select(ctx, querier, &ids, listStorySubscriberIDsQuery, storyID); err != nil {
		r.logger.Error("Failed to list subscribers", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return ids, nil
}
