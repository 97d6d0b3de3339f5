package interfaces

import (
	"context"

	"github.com/google/uuid"

	"plotvote-server/internal/models"
)

// UserRepository определяет методы для работы с пользователями и профилями.
type UserRepository interface {
	// CreateUser сохраняет пользователя. Возвращает models.ErrUserAlreadyExists
	// или models.ErrEmailAlreadyExists при конфликте уникальности.
	CreateUser(ctx context.Context, querier DBTX, user *models.User) error

	// GetUserByID возвращает пользователя. models.ErrUserNotFound, если его нет.
	GetUserByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.User, error)

	// GetUserByUsername возвращает пользователя по имени.
	GetUserByUsername(ctx context.Context, querier DBTX, username string) (*models.User, error)

	// CreateProfile создает профиль пользователя.
	CreateProfile(ctx context.Context, querier DBTX, profile *models.UserProfile) error

	// GetProfile возвращает профиль. models.ErrUserNotFound, если его нет.
	GetProfile(ctx context.Context, querier DBTX, userID uuid.UUID) (*models.UserProfile, error)

	// GetProfileForUpdate возвращает профиль с блокировкой строки (FOR UPDATE).
	// Все изменения баланса кредитов идут через эту блокировку.
	GetProfileForUpdate(ctx context.Context, querier DBTX, userID uuid.UUID) (*models.UserProfile, error)

	// GetProfileByReferralCode возвращает профиль по реферальному коду.
	GetProfileByReferralCode(ctx context.Context, querier DBTX, code string) (*models.UserProfile, error)

	// UpdateCredits записывает баланс кредитов и накопительные счетчики профиля.
	UpdateCredits(ctx context.Context, querier DBTX, profile *models.UserProfile) error

	// UpdateLoginStreak записывает состояние серии ежедневных входов.
	UpdateLoginStreak(ctx context.Context, querier DBTX, profile *models.UserProfile) error

	// MarkReferralRewarded помечает, что одноразовый реферальный бонус выдан.
	MarkReferralRewarded(ctx context.Context, querier DBTX, userID uuid.UUID) error
}
