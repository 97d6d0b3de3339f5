package models

import "github.com/google/uuid"

// GenerationTask — задача генерации главы, публикуемая в очередь воркера.
type GenerationTask struct {
	TaskID        string    `json:"task_id"` // Уникальный ID задачи для логов и метрик
	StoryID       uuid.UUID `json:"story_id"`
	ChapterNumber int       `json:"chapter_number"`
	PromptID      uuid.UUID `json:"prompt_id"`
	PromptText    string    `json:"prompt_text"`
}

// SettingUpdateEvent — событие изменения настройки для fanout-рассылки.
type SettingUpdateEvent struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
