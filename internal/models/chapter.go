package models

import (
	"time"

	"github.com/google/uuid"
)

// Chapter — сгенерированная глава истории. Уникальна по (story_id, chapter_number).
type Chapter struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	StoryID         uuid.UUID  `json:"story_id" db:"story_id"`
	ChapterNumber   int        `json:"chapter_number" db:"chapter_number"`
	Title           string     `json:"title" db:"title"`
	Content         string     `json:"content" db:"content"`
	WinningPromptID *uuid.UUID `json:"winning_prompt_id,omitempty" db:"winning_prompt_id"`
	WordCount       int        `json:"word_count" db:"word_count"`
	ReadTimeMinutes int        `json:"read_time_minutes" db:"read_time_minutes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// ChapterView — прогресс чтения главы пользователем.
// read_percentage хранится в диапазоне [0, 100],
// time_spent_seconds накапливается по всем сессиям чтения.
type ChapterView struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ChapterID        uuid.UUID `json:"chapter_id" db:"chapter_id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	ReadPercentage   int       `json:"read_percentage" db:"read_percentage"`
	TimeSpentSeconds int       `json:"time_spent_seconds" db:"time_spent_seconds"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// MinReadPercentage — порог, с которого чтение засчитывается для наград автору.
const MinReadPercentage = 60

// ClampReadPercentage приводит прогресс чтения к допустимому диапазону [0, 100].
func ClampReadPercentage(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
