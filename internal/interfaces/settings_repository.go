package interfaces

import (
	"context"

	"plotvote-server/internal/models"
)

// SettingsRepository определяет методы для работы с настройками сайта.
type SettingsRepository interface {
	// GetByKey возвращает настройку. models.ErrNotFound, если ключа нет.
	GetByKey(ctx context.Context, querier DBTX, key string) (*models.SiteSetting, error)

	// GetAll возвращает все настройки.
	GetAll(ctx context.Context, querier DBTX) ([]*models.SiteSetting, error)

	// Upsert создает или обновляет настройку.
	Upsert(ctx context.Context, querier DBTX, setting *models.SiteSetting) error
}
