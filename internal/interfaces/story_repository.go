package interfaces

import (
	"context"

	"github.com/google/uuid"

	"plotvote-server/internal/models"
)

// StoryListFilter — параметры выборки списка историй.
type StoryListFilter struct {
	Status *models.StoryStatus
	Genre  *string
	Limit  int
	Offset int
}

// StoryRepository определяет методы для работы с историями и апвоутами питчей.
type StoryRepository interface {
	// Create сохраняет новую историю.
	Create(ctx context.Context, querier DBTX, story *models.Story) error

	// GetByID возвращает историю по ID. Возвращает models.ErrStoryNotFound, если ее нет.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Story, error)

	// GetByIDForUpdate возвращает историю с блокировкой строки (FOR UPDATE).
	// Используется внутри транзакций переключения апвоута.
	GetByIDForUpdate(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Story, error)

	// List возвращает истории по фильтру, отсортированные по дате создания (новые первыми).
	List(ctx context.Context, querier DBTX, filter StoryListFilter) ([]*models.Story, error)

	// ListByAuthor возвращает истории автора.
	ListByAuthor(ctx context.Context, querier DBTX, authorID uuid.UUID) ([]*models.Story, error)

	// UpdateStatus переводит историю в новый статус.
	UpdateStatus(ctx context.Context, querier DBTX, id uuid.UUID, status models.StoryStatus) error

	// PublishPersonal делает личную историю коллаборативным питчем.
	// models.ErrStoryNotFound, если истории нет или она уже не личная.
	PublishPersonal(ctx context.Context, querier DBTX, id uuid.UUID) error

	// SetUpvoteCount записывает пересчитанный счетчик апвоутов.
	SetUpvoteCount(ctx context.Context, querier DBTX, id uuid.UUID, count int) error

	// AddUpvote добавляет апвоут. Возвращает models.ErrAlreadyVoted при дубликате.
	AddUpvote(ctx context.Context, querier DBTX, storyID, userID uuid.UUID) error

	// RemoveUpvote снимает апвоут. Возвращает models.ErrNotFound, если апвоута не было.
	RemoveUpvote(ctx context.Context, querier DBTX, storyID, userID uuid.UUID) error

	// HasUpvoted проверяет наличие апвоута пользователя.
	HasUpvoted(ctx context.Context, querier DBTX, storyID, userID uuid.UUID) (bool, error)

	// CountUpvotes возвращает фактическое число апвоутов из строк таблицы.
	CountUpvotes(ctx context.Context, querier DBTX, storyID uuid.UUID) (int, error)

	// Subscribe подписывает пользователя на историю (идемпотентно).
	Subscribe(ctx context.Context, querier DBTX, storyID, userID uuid.UUID) error

	// Unsubscribe снимает подписку.
	Unsubscribe(ctx context.Context, querier DBTX, storyID, userID uuid.UUID) error

	// ListSubscriberIDs возвращает ID подписчиков истории.
	ListSubscriberIDs(ctx context.Context, querier DBTX, storyID uuid.UUID) ([]uuid.UUID, error)
}
