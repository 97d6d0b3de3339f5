package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

const (
	createCreditTransactionQuery = `
        INSERT INTO credit_transactions (id, user_id, amount, type, description, story_id, chapter_id, balance_after, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	listCreditTransactionsQuery = `
        SELECT id, user_id, amount, type, description, story_id, chapter_id, balance_after, created_at
        FROM credit_transactions WHERE user_id = $1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	sumEarnedSinceQuery = `
        SELECT COALESCE(SUM(amount), 0) FROM credit_transactions
        WHERE user_id = $1 AND type = 'earned' AND description LIKE $2 || '%' AND created_at >= $3`

	existsEarnedForStoryQuery = `
        SELECT EXISTS (
            SELECT 1 FROM credit_transactions
            WHERE user_id = $1 AND story_id = $2 AND type = 'earned' AND description = $3
        )`

	getCreditPackageByIDQuery = `
        SELECT id, name, credits, bonus_credits, price_cents, currency, is_active, sort_order, created_at
        FROM credit_packages WHERE id = $1`

	listActiveCreditPackagesQuery = `
        SELECT id, name, credits, bonus_credits, price_cents, currency, is_active, sort_order, created_at
        FROM credit_packages WHERE is_active = TRUE ORDER BY sort_order ASC`

	createSocialShareQuery = `
        INSERT INTO social_shares (id, user_id, story_id, platform, shared_at, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`

	hasShareTodayQuery = `
        SELECT EXISTS (
            SELECT 1 FROM social_shares
            WHERE user_id = $1 AND platform = $2 AND shared_at >= $3
        )`
)

// pgCreditRepository реализует интерфейс CreditRepository для PostgreSQL.
type pgCreditRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.CreditRepository = (*pgCreditRepository)(nil)

// NewPgCreditRepository создает новый экземпляр репозитория кредитов.
func NewPgCreditRepository(logger *zap.Logger) interfaces.CreditRepository {
	return &pgCreditRepository{logger: logger.Named("PgCreditRepo")}
}

// CreateTransaction сохраняет строку аудита движения кредитов.
func (r *pgCreditRepository) CreateTransaction(ctx context.Context, querier interfaces.DBTX, tx *models.CreditTransaction) error {
	_, err := querier.Exec(ctx, createCreditTransactionQuery,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Description, tx.StoryID, tx.ChapterID, tx.BalanceAfter)
	if err != nil {
		r.logger.Error("Failed to create credit transaction",
			zap.String("userID", tx.UserID.String()), zap.String("type", string(tx.Type)), zap.Error(err))
		return fmt.Errorf("failed to create credit transaction: %w", err)
	}
	r.logger.Debug("Credit transaction created",
		zap.String("userID", tx.UserID.String()),
		zap.Int("amount", tx.Amount),
		zap.String("type", string(tx.Type)),
		zap.Int("balanceAfter", tx.BalanceAfter))
	return nil
}

// ListTransactions возвращает историю операций пользователя.
func (r *pgCreditRepository) ListTransactions(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	var txs []*models.CreditTransaction
	err := pgxscan.Select(ctx, querier, &txs, listCreditTransactionsQuery, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list credit transactions", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list credit transactions: %w", err)
	}
	if txs == nil {
		txs = []*models.CreditTransaction{}
	}
	return txs, nil
}

// SumEarnedSince суммирует начисления с описанием, начинающимся с префикса.
func (r *pgCreditRepository) SumEarnedSince(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, descriptionPrefix string, since time.Time) (int, error) {
	var sum int
	err := querier.QueryRow(ctx, sumEarnedSinceQuery, userID, descriptionPrefix, since).Scan(&sum)
	if err != nil {
		r.logger.Error("Failed to sum earned credits",
			zap.String("userID", userID.String()), zap.String("prefix", descriptionPrefix), zap.Error(err))
		return 0, fmt.Errorf("failed to sum earned credits: %w", err)
	}
	return sum, nil
}

// ExistsEarnedForStory проверяет, было ли уже начисление с таким описанием по истории.
func (r *pgCreditRepository) ExistsEarnedForStory(ctx context.Context, querier interfaces.DBTX, userID, storyID uuid.UUID, description string) (bool, error) {
	var exists bool
	err := querier.QueryRow(ctx, existsEarnedForStoryQuery, userID, storyID, description).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check earned transaction existence",
			zap.String("userID", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check earned transaction existence: %w", err)
	}
	return exists, nil
}

// GetPackageByID возвращает пакет кредитов.
func (r *pgCreditRepository) GetPackageByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	err := pgxscan.Get(ctx, querier, &pkg, getCreditPackageByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPackageNotFound
		}
		r.logger.Error("Failed to get credit package", zap.String("packageID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get credit package: %w", err)
	}
	return &pkg, nil
}

// ListActivePackages возвращает активные пакеты в порядке sort_order.
func (r *pgCreditRepository) ListActivePackages(ctx context.Context, querier interfaces.DBTX) ([]*models.CreditPackage, error) {
	var pkgs []*models.CreditPackage
	err := pgxscan.Select(ctx, querier, &pkgs, listActiveCreditPackagesQuery)
	if err != nil {
		r.logger.Error("Failed to list credit packages", zap.Error(err))
		return nil, fmt.Errorf("failed to list credit packages: %w", err)
	}
	if pkgs == nil {
		pkgs = []*models.CreditPackage{}
	}
	return pkgs, nil
}

// CreateSocialShare сохраняет факт шаринга.
func (r *pgCreditRepository) CreateSocialShare(ctx context.Context, querier interfaces.DBTX, share *models.SocialShare) error {
	_, err := querier.Exec(ctx, createSocialShareQuery,
		share.ID, share.UserID, share.StoryID, share.Platform, share.SharedAt)
	if err != nil {
		r.logger.Error("Failed to create social share",
			zap.String("userID", share.UserID.String()), zap.String("platform", share.Platform), zap.Error(err))
		return fmt.Errorf("failed to create social share: %w", err)
	}
	return nil
}

// HasShareToday проверяет, шарил ли пользователь сегодня на этой платформе.
func (r *pgCreditRepository) HasShareToday(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, platform string, dayStart time.Time) (bool, error) {
	var exists bool
	err := querier.QueryRow(ctx, hasShareTodayQuery, userID, platform, dayStart).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check social share",
			zap.String("userID", userID.String()), zap.String("platform", platform), zap.Error(err))
		return false, fmt.Errorf("failed to check social share: %w", err)
	}
	return exists, nil
}
