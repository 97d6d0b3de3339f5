package interfaces

import (
	"context"

	"github.com/google/uuid"

	"plotvote-server/internal/models"
)

// PromptRepository определяет методы для работы с промптами глав.
type PromptRepository interface {
	// Create сохраняет новый промпт.
	// Возвращает models.ErrPromptAlreadySubmitted, если пользователь уже
	// подавал промпт для этого слота главы.
	Create(ctx context.Context, querier DBTX, prompt *models.Prompt) error

	// GetByID возвращает промпт по ID. Возвращает models.ErrPromptNotFound, если его нет.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Prompt, error)

	// ListForSlot возвращает промпты слота (story, chapterNumber),
	// отсортированные по числу голосов по убыванию.
	ListForSlot(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int) ([]*models.Prompt, error)

	// GetTopForSlot возвращает промпт-лидер слота (больше всего голосов,
	// при равенстве — более ранний). models.ErrPromptNotFound, если промптов нет.
	GetTopForSlot(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int) (*models.Prompt, error)

	// SetVoteCount записывает пересчитанный счетчик голосов.
	SetVoteCount(ctx context.Context, querier DBTX, promptID uuid.UUID, count int) error

	// SetStatus переводит промпт в указанный статус.
	SetStatus(ctx context.Context, querier DBTX, promptID uuid.UUID, status models.PromptStatus) error

	// MarkWinner помечает промпт победителем слота.
	MarkWinner(ctx context.Context, querier DBTX, promptID uuid.UUID) error

	// RejectSiblings отклоняет все проигравшие промпты слота, кроме победителя.
	RejectSiblings(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int, winnerID uuid.UUID) error

	// ArchiveOpenForStory архивирует открытые (active/voting) промпты истории.
	// Вызывается при завершении истории.
	ArchiveOpenForStory(ctx context.Context, querier DBTX, storyID uuid.UUID) error
}

// VoteRepository определяет методы для работы с голосами за промпты.
type VoteRepository interface {
	// Create сохраняет голос. Возвращает models.ErrAlreadyVoted при дубликате
	// (у пользователя уже есть голос в этом слоте).
	Create(ctx context.Context, querier DBTX, vote *models.PromptVote) error

	// GetForSlot возвращает голос пользователя в слоте, если он есть.
	// models.ErrNotFound, если голоса нет.
	GetForSlot(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int, userID uuid.UUID) (*models.PromptVote, error)

	// Delete удаляет голос по ID.
	Delete(ctx context.Context, querier DBTX, voteID uuid.UUID) error

	// CountForPrompt возвращает фактическое число голосов за промпт.
	CountForPrompt(ctx context.Context, querier DBTX, promptID uuid.UUID) (int, error)

	// ListVotedPromptIDs возвращает ID промптов слота, за которые голосовал пользователь.
	ListVotedPromptIDs(ctx context.Context, querier DBTX, storyID uuid.UUID, chapterNumber int, userID uuid.UUID) ([]uuid.UUID, error)
}
