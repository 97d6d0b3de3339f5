package interfaces

import (
	"context"

	"github.com/google/uuid"

	"plotvote-server/internal/models"
)

// ChapterRepository определяет методы для работы с главами.
type ChapterRepository interface {
	// Create сохраняет главу. Возвращает models.ErrChapterAlreadyExists,
	// если глава для этого слота уже есть.
	Create(ctx context.Context, querier DBTX, chapter *models.Chapter) error

	// GetByID возвращает главу по ID. models.ErrChapterNotFound, если ее нет.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Chapter, error)

	// GetBySlot возвращает главу по (storyID, chapterNumber).
	GetBySlot(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int) (*models.Chapter, error)

	// ExistsForSlot проверяет, создана ли уже глава для слота.
	ExistsForSlot(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int) (bool, error)

	// ListByStory возвращает главы истории по порядку номеров.
	ListByStory(ctx context.Context, querier DBTX, storyID uuid.UUID) ([]*models.Chapter, error)

	// MaxChapterNumber возвращает номер последней главы истории (0, если глав нет).
	MaxChapterNumber(ctx context.Context, querier DBTX, storyID uuid.UUID) (int, error)
}

// ReadingRepository определяет методы для работы с прогрессом чтения.
type ReadingRepository interface {
	// UpsertView создает или обновляет прогресс чтения главы.
	// Процент монотонно не убывает: записывается максимум старого и нового значения.
	UpsertView(ctx context.Context, querier DBTX, view *models.ChapterView) (*models.ChapterView, error)

	// GetView возвращает прогресс пользователя по главе. models.ErrNotFound, если записи нет.
	GetView(ctx context.Context, querier DBTX, chapterID, userID uuid.UUID) (*models.ChapterView, error)

	// CountQualifiedReaders возвращает число уникальных читателей истории,
	// прочитавших хотя бы одну главу не менее чем на minPercentage.
	CountQualifiedReaders(ctx context.Context, querier DBTX, storyID uuid.UUID, minPercentage int) (int, error)
}
