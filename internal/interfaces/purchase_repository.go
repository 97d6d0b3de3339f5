package interfaces

import (
	"context"

	"github.com/google/uuid"

	"plotvote-server/internal/models"
)

// PurchaseRepository определяет методы для работы с покупками пакетов кредитов.
type PurchaseRepository interface {
	// Create сохраняет покупку в статусе pending.
	Create(ctx context.Context, querier DBTX, purchase *models.Purchase) error

	// GetByID возвращает покупку. models.ErrPurchaseNotFound, если ее нет.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Purchase, error)

	// GetBySessionIDForUpdate возвращает покупку по ID checkout-сессии
	// с блокировкой строки. Используется при обработке вебхука.
	GetBySessionIDForUpdate(ctx context.Context, querier DBTX, sessionID string) (*models.Purchase, error)

	// UpdateStatus переводит покупку в новый статус.
	UpdateStatus(ctx context.Context, querier DBTX, id uuid.UUID, status models.PurchaseStatus) error

	// MarkCompleted завершает покупку: статус completed, ID платежа
	// провайдера и completed_at проставляются одним запросом.
	MarkCompleted(ctx context.Context, querier DBTX, id uuid.UUID, paymentIntentID string) error

	// ListByUser возвращает покупки пользователя (новые первыми).
	ListByUser(ctx context.Context, querier DBTX, userID uuid.UUID) ([]*models.Purchase, error)
}
