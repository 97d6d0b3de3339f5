package interfaces

import (
	"context"

	"plotvote-server/internal/models"
)

// GenerationTaskPublisher публикует задачи генерации глав в очередь воркера.
type GenerationTaskPublisher interface {
	// PublishGenerationTask отправляет задачу в durable-очередь.
	PublishGenerationTask(ctx context.Context, task models.GenerationTask) error
}

// SettingsEventPublisher рассылает событие изменения настройки
// через fanout-обменник всем инстансам.
type SettingsEventPublisher interface {
	PublishSettingUpdate(ctx context.Context, setting models.SiteSetting) error
}
