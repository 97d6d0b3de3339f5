package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

const (
	createPurchaseQuery = `
        INSERT INTO purchases (id, user_id, package_id, external_session_id, status, credits_granted, amount_cents, currency, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	getPurchaseByIDQuery = `
        SELECT id, user_id, package_id, external_session_id, payment_intent_id, status, credits_granted, amount_cents, currency, created_at, completed_at
        FROM purchases WHERE id = $1`

	getPurchaseBySessionIDForUpdateQuery = `
        SELECT id, user_id, package_id, external_session_id, payment_intent_id, status, credits_granted, amount_cents, currency, created_at, completed_at
        FROM purchases WHERE external_session_id = $1 FOR UPDATE`

	updatePurchaseStatusQuery = `UPDATE purchases SET status = $2 WHERE id = $1`

	markPurchaseCompletedQuery = `
        UPDATE purchases SET status = 'completed', payment_intent_id = $2, completed_at = NOW()
        WHERE id = $1`

	listPurchasesByUserQuery = `
        SELECT id, user_id, package_id, external_session_id, payment_intent_id, status, credits_granted, amount_cents, currency, created_at, completed_at
        FROM purchases WHERE user_id = $1 ORDER BY created_at DESC`
)

// pgPurchaseRepository реализует интерфейс PurchaseRepository для PostgreSQL.
type pgPurchaseRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.PurchaseRepository = (*pgPurchaseRepository)(nil)

// NewPgPurchaseRepository создает новый экземпляр репозитория покупок.
func NewPgPurchaseRepository(logger *zap.Logger) interfaces.PurchaseRepository {
	return &pgPurchaseRepository{logger: logger.Named("PgPurchaseRepo")}
}

// Create сохраняет покупку.
func (r *pgPurchaseRepository) Create(ctx context.Context, querier interfaces.DBTX, purchase *models.Purchase) error {
	_, err := querier.Exec(ctx, createPurchaseQuery,
		purchase.ID, purchase.UserID, purchase.PackageID, purchase.ExternalSessionID,
		purchase.Status, purchase.CreditsGranted, purchase.AmountCents, purchase.Currency)
	if err != nil {
		r.logger.Error("Failed to create purchase",
			zap.String("userID", purchase.UserID.String()),
			zap.String("sessionID", purchase.ExternalSessionID),
			zap.Error(err))
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	r.logger.Info("Purchase created",
		zap.String("purchaseID", purchase.ID.String()),
		zap.String("sessionID", purchase.ExternalSessionID))
	return nil
}

// GetByID возвращает покупку по ID.
func (r *pgPurchaseRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := pgxscan.Get(ctx, querier, &purchase, getPurchaseByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPurchaseNotFound
		}
		r.logger.Error("Failed to get purchase by ID", zap.String("purchaseID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get purchase %s: %w", id, err)
	}
	return &purchase, nil
}

// GetBySessionIDForUpdate возвращает покупку по ID сессии с блокировкой строки.
func (r *pgPurchaseRepository) GetBySessionIDForUpdate(ctx context.Context, querier interfaces.DBTX, sessionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := pgxscan.Get(ctx, querier, &purchase, getPurchaseBySessionIDForUpdateQuery, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPurchaseNotFound
		}
		r.logger.Error("Failed to get purchase by session ID", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get purchase by session %s: %w", sessionID, err)
	}
	return &purchase, nil
}

// UpdateStatus переводит покупку в новый статус.
func (r *pgPurchaseRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.PurchaseStatus) error {
	commandTag, err := querier.Exec(ctx, updatePurchaseStatusQuery, id, status)
	if err != nil {
		r.logger.Error("Failed to update purchase status", zap.String("purchaseID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update purchase status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrPurchaseNotFound
	}
	r.logger.Info("Purchase status updated", zap.String("purchaseID", id.String()), zap.String("status", string(status)))
	return nil
}

// MarkCompleted завершает покупку, фиксируя ID платежа провайдера.
func (r *pgPurchaseRepository) MarkCompleted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, paymentIntentID string) error {
	commandTag, err := querier.Exec(ctx, markPurchaseCompletedQuery, id, paymentIntentID)
	if err != nil {
		r.logger.Error("Failed to mark purchase completed", zap.String("purchaseID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to mark purchase completed: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrPurchaseNotFound
	}
	r.logger.Info("Purchase completed",
		zap.String("purchaseID", id.String()), zap.String("paymentIntentID", paymentIntentID))
	return nil
}

// ListByUser возвращает покупки пользователя.
func (r *pgPurchaseRepository) ListByUser(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) ([]*models.Purchase, error) {
	var purchases []*models.Purchase
	err := pgxscan.Select(ctx, querier, &purchases, listPurchasesByUserQuery, userID)
	if err != nil {
		r.logger.Error("Failed to list purchases", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	if purchases == nil {
		purchases = []*models.Purchase{}
	}
	return purchases, nil
}
