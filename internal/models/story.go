package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus определяет возможные статусы истории.
// Совпадает с типом ENUM 'story_status' в БД.
type StoryStatus string

const (
	StoryStatusPitch     StoryStatus = "pitch"     // Питч, собирает апвоуты
	StoryStatusActive    StoryStatus = "active"    // Активна, главы пишутся по голосованию
	StoryStatusPaused    StoryStatus = "paused"    // Приостановлена автором, промпты не принимаются
	StoryStatusCompleted StoryStatus = "completed" // Завершена автором
)

// Story представляет историю (питч или активную) в базе данных.
// Поля Characters/Outline/WorldBuilding/Themes — авторский каркас,
// который попадает в промпт генерации глав.
type Story struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	AuthorID      uuid.UUID   `json:"author_id" db:"author_id"`
	Title         string      `json:"title" db:"title"`
	Description   string      `json:"description" db:"description"`
	Genre         string      `json:"genre" db:"genre"`
	Language      string      `json:"language" db:"language"`
	Characters    string      `json:"characters" db:"characters"`
	Outline       string      `json:"outline" db:"outline"`
	WorldBuilding string      `json:"world_building" db:"world_building"`
	Themes        string      `json:"themes" db:"themes"`
	Status        StoryStatus `json:"status" db:"status"`
	CoverImageURL *string     `json:"cover_image_url,omitempty" db:"cover_image_url"`
	IsPersonal    bool        `json:"is_personal" db:"is_personal"` // Личная история: главы генерируются только для автора
	UpvoteCount   int         `json:"upvote_count" db:"upvote_count"`
	VotesNeeded   int         `json:"votes_needed" db:"votes_needed"` // Порог апвоутов для активации питча
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`

	// Заполняется на уровне запроса для конкретного пользователя
	IsUpvoted    bool `json:"is_upvoted" db:"-"`
	IsSubscribed bool `json:"is_subscribed" db:"-"`
	ChapterCount int  `json:"chapter_count" db:"-"`
}

// IsAcceptingPrompts сообщает, принимает ли история промпты для следующей главы.
func (s *Story) IsAcceptingPrompts() bool {
	return s.Status == StoryStatusActive && !s.IsPersonal
}

// StoryUpvote — апвоут питча пользователем. Уникален по (story_id, user_id).
type StoryUpvote struct {
	ID        uuid.UUID `json:"id" db:"id"`
	StoryID   uuid.UUID `json:"story_id" db:"story_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StorySubscription — подписка пользователя на обновления истории.
type StorySubscription struct {
	ID        uuid.UUID `json:"id" db:"id"`
	StoryID   uuid.UUID `json:"story_id" db:"story_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UpvoteResult — результат переключения апвоута.
type UpvoteResult struct {
	Upvoted     bool        `json:"upvoted"` // true — апвоут добавлен, false — снят
	UpvoteCount int         `json:"upvote_count"`
	Status      StoryStatus `json:"status"` // Статус истории после операции (мог стать active)
	Activated   bool        `json:"activated"`
}
