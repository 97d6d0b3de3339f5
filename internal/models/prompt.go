package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxPromptLength — максимальная длина текста промпта в символах.
const MaxPromptLength = 3000

// DefaultVotingPeriod — сколько открыто голосование за промпты одного слота главы.
const DefaultVotingPeriod = 7 * 24 * time.Hour

// PromptStatus — этап жизненного цикла промпта.
// active — подан, голосов еще нет; voting — собирает голоса;
// winner/rejected — итог выбора победителя слота;
// archived — история завершена до закрытия слота.
type PromptStatus string

const (
	PromptStatusActive   PromptStatus = "active"
	PromptStatusVoting   PromptStatus = "voting"
	PromptStatusWinner   PromptStatus = "winner"
	PromptStatusRejected PromptStatus = "rejected"
	PromptStatusArchived PromptStatus = "archived"
)

// Prompt — предложение направления следующей главы.
// Уникален по (story_id, chapter_number, author_id): один промпт на слот от пользователя.
type Prompt struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	StoryID       uuid.UUID    `json:"story_id" db:"story_id"`
	AuthorID      uuid.UUID    `json:"author_id" db:"author_id"`
	ChapterNumber int          `json:"chapter_number" db:"chapter_number"`
	Text          string       `json:"text" db:"text"`
	VoteCount     int          `json:"vote_count" db:"vote_count"` // Денормализованный счетчик, пересчитывается из строк голосов
	Status        PromptStatus `json:"status" db:"status"`
	VotingEndsAt  time.Time    `json:"voting_ends_at" db:"voting_ends_at"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`

	// Заполняется на уровне запроса для конкретного пользователя
	IsVoted bool `json:"is_voted" db:"-"`
}

// VotingOpen сообщает, открыто ли еще голосование за этот промпт.
func (p *Prompt) VotingOpen(now time.Time) bool {
	return now.Before(p.VotingEndsAt)
}

// AcceptsVotes сообщает, может ли промпт принимать голоса по своему статусу.
func (p *Prompt) AcceptsVotes() bool {
	return p.Status == PromptStatusActive || p.Status == PromptStatusVoting
}

// PromptVote — голос пользователя за промпт.
// Пользователь имеет не более одного голоса на слот (story_id, chapter_number).
type PromptVote struct {
	ID            uuid.UUID `json:"id" db:"id"`
	PromptID      uuid.UUID `json:"prompt_id" db:"prompt_id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	StoryID       uuid.UUID `json:"story_id" db:"story_id"`
	ChapterNumber int       `json:"chapter_number" db:"chapter_number"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// VoteResult — результат голосования с актуальными счетчиками затронутых промптов.
type VoteResult struct {
	PromptID  uuid.UUID `json:"prompt_id"`
	VoteCount int       `json:"vote_count"`
	// Если голос был перенесен с другого промпта того же слота
	PreviousPromptID  *uuid.UUID `json:"previous_prompt_id,omitempty"`
	PreviousVoteCount int        `json:"previous_vote_count,omitempty"`
	Moved             bool       `json:"moved"`
}

// WinnerSelection — итог выбора победившего промпта для слота главы.
// Перечисляет эффекты, которые были применены, чтобы вызывающий код мог их залогировать.
type WinnerSelection struct {
	Prompt        *Prompt   `json:"prompt"`
	StoryID       uuid.UUID `json:"story_id"`
	ChapterNumber int       `json:"chapter_number"`
	TaskPublished bool      `json:"task_published"` // false, если глава уже существует (задача не ставилась)
}
