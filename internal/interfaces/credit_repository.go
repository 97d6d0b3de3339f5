package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"plotvote-server/internal/models"
)

// CreditRepository определяет методы для работы с журналом кредитов и пакетами.
type CreditRepository interface {
	// CreateTransaction сохраняет строку аудита движения кредитов.
	CreateTransaction(ctx context.Context, querier DBTX, tx *models.CreditTransaction) error

	// ListTransactions возвращает историю операций пользователя (новые первыми).
	ListTransactions(ctx context.Context, querier DBTX, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error)

	// SumEarnedSince суммирует начисления пользователя с указанного момента,
	// у которых описание начинается с descriptionPrefix. Используется для
	// месячных лимитов правил наград и проверок идемпотентности.
	SumEarnedSince(ctx context.Context, querier DBTX, userID uuid.UUID, descriptionPrefix string, since time.Time) (int, error)

	// ExistsEarnedForStory проверяет, было ли уже начисление пользователю
	// с таким описанием по этой истории. Идемпотентность наград за вехи.
	ExistsEarnedForStory(ctx context.Context, querier DBTX, userID, storyID uuid.UUID, description string) (bool, error)

	// GetPackageByID возвращает пакет кредитов. models.ErrPackageNotFound, если его нет.
	GetPackageByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.CreditPackage, error)

	// ListActivePackages возвращает активные пакеты в порядке sort_order.
	ListActivePackages(ctx context.Context, querier DBTX) ([]*models.CreditPackage, error)

	// CreateSocialShare сохраняет факт шаринга.
	CreateSocialShare(ctx context.Context, querier DBTX, share *models.SocialShare) error

	// HasShareToday проверяет, шарил ли пользователь сегодня на этой платформе.
	HasShareToday(ctx context.Context, querier DBTX, userID uuid.UUID, platform string, dayStart time.Time) (bool, error)
}
