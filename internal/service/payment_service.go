package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
	"plotvote-server/internal/payments"
)

// PaymentService управляет покупкой пакетов кредитов:
// создание checkout-сессий и обработка вебхуков провайдера.
type PaymentService interface {
	ListPackages(ctx context.Context) ([]*models.CreditPackage, error)
	CreateCheckout(ctx context.Context, userID, packageID uuid.UUID) (*models.CheckoutSession, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]*models.Purchase, error)

	// HandleWebhook проверяет подпись и применяет событие провайдера.
	// Начисление кредитов ровно одно: повторная доставка события
	// по завершенной покупке ничего не меняет.
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

// PaymentConfig — параметры сервиса платежей.
type PaymentConfig struct {
	WebhookSecret      string
	SuccessURL         string
	CancelURL          string
	SignatureTolerance time.Duration
}

type paymentServiceImpl struct {
	db           interfaces.DBTX
	txManager    interfaces.TxManager
	creditRepo   interfaces.CreditRepository
	purchaseRepo interfaces.PurchaseRepository
	ledger       CreditLedger
	provider     interfaces.PaymentProvider
	cfg          PaymentConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	creditRepo interfaces.CreditRepository,
	purchaseRepo interfaces.PurchaseRepository,
	ledger CreditLedger,
	provider interfaces.PaymentProvider,
	cfg PaymentConfig,
	logger *zap.Logger,
) PaymentService {
	if cfg.SignatureTolerance <= 0 {
		cfg.SignatureTolerance = payments.DefaultSignatureTolerance
	}
	return &paymentServiceImpl{
		db:           db,
		txManager:    txManager,
		creditRepo:   creditRepo,
		purchaseRepo: purchaseRepo,
		ledger:       ledger,
		provider:     provider,
		cfg:          cfg,
		logger:       logger.Named("PaymentService"),
		now:          time.Now,
	}
}

// ListPackages возвращает активные пакеты кредитов.
func (s *paymentServiceImpl) ListPackages(ctx context.Context) ([]*models.CreditPackage, error) {
	return s.creditRepo.ListActivePackages(ctx, s.db)
}

// CreateCheckout создает pending-покупку и checkout-сессию у провайдера.
func (s *paymentServiceImpl) CreateCheckout(ctx context.Context, userID, packageID uuid.UUID) (*models.CheckoutSession, error) {
	pkg, err := s.creditRepo.GetPackageByID(ctx, s.db, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, models.ErrPackageNotFound
	}

	purchase := &models.Purchase{
		ID:             uuid.New(),
		UserID:         userID,
		PackageID:      pkg.ID,
		Status:         models.PurchaseStatusPending,
		CreditsGranted: pkg.TotalCredits(),
		AmountCents:    pkg.PriceCents,
		Currency:       pkg.Currency,
	}

	session, err := s.provider.CreateCheckoutSession(ctx, interfaces.CheckoutParams{
		PurchaseID:  purchase.ID.String(),
		PackageName: pkg.Name,
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("userID", userID.String()),
			zap.String("packageID", packageID.String()),
			zap.Error(err))
		return nil, err
	}
	purchase.ExternalSessionID = session.SessionID

	if err := s.purchaseRepo.Create(ctx, s.db, purchase); err != nil {
		// Сессия у провайдера останется висеть неоплаченной и истечет сама
		s.logger.Error("Failed to persist purchase",
			zap.String("sessionID", session.SessionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("purchaseID", purchase.ID.String()),
		zap.String("sessionID", session.SessionID),
		zap.Int("amountCents", pkg.PriceCents))
	return session, nil
}

// ListPurchases возвращает покупки пользователя.
func (s *paymentServiceImpl) ListPurchases(ctx context.Context, userID uuid.UUID) ([]*models.Purchase, error) {
	return s.purchaseRepo.ListByUser(ctx, s.db, userID)
}

// HandleWebhook обрабатывает событие платежного провайдера.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := payments.VerifySignature(payload, signatureHeader, s.cfg.WebhookSecret, s.now(), s.cfg.SignatureTolerance); err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return err
	}

	var event payments.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	if event.Data.SessionID == "" {
		return fmt.Errorf("%w: missing session id", models.ErrBadRequest)
	}

	switch event.Type {
	case payments.EventCheckoutCompleted:
		return s.completePurchase(ctx, event.Data.SessionID, event.Data.PaymentIntentID)
	case payments.EventCheckoutFailed:
		return s.failPurchase(ctx, event.Data.SessionID)
	default:
		// Незнакомые события подтверждаем, чтобы провайдер не ретраил их бесконечно
		s.logger.Debug("Ignoring unhandled webhook event", zap.String("type", event.Type))
		return nil
	}
}

// completePurchase переводит покупку в completed и начисляет кредиты.
// Статус, идентификатор платежа провайдера и начисление меняются
// в одной транзакции под блокировкой строки покупки.
func (s *paymentServiceImpl) completePurchase(ctx context.Context, sessionID, paymentIntentID string) error {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		purchase, err := s.purchaseRepo.GetBySessionIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if purchase.Status != models.PurchaseStatusPending {
			// Повторная доставка события — кредиты уже начислены (или покупка провалена)
			return models.ErrPurchaseCompleted
		}

		desc := fmt.Sprintf("Credit package purchase: %s", purchase.ID)
		if _, err := s.ledger.AddCreditsTx(ctx, tx, purchase.UserID, purchase.CreditsGranted,
			models.TransactionTypePurchase, desc, models.TransactionRefs{}); err != nil {
			return err
		}

		return s.purchaseRepo.MarkCompleted(ctx, tx, purchase.ID, paymentIntentID)
	})
	if err != nil {
		if errors.Is(err, models.ErrPurchaseCompleted) {
			s.logger.Info("Webhook replay for already settled purchase", zap.String("sessionID", sessionID))
			return nil
		}
		s.logger.Error("Failed to complete purchase", zap.String("sessionID", sessionID), zap.Error(err))
		return err
	}

	s.logger.Info("Purchase completed, credits granted", zap.String("sessionID", sessionID))
	return nil
}

// failPurchase помечает покупку проваленной. Завершенную покупку не трогает.
func (s *paymentServiceImpl) failPurchase(ctx context.Context, sessionID string) error {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		purchase, err := s.purchaseRepo.GetBySessionIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if purchase.Status != models.PurchaseStatusPending {
			return nil
		}
		return s.purchaseRepo.UpdateStatus(ctx, tx, purchase.ID, models.PurchaseStatusFailed)
	})
	if err != nil {
		s.logger.Error("Failed to mark purchase as failed", zap.String("sessionID", sessionID), zap.Error(err))
		return err
	}
	s.logger.Info("Purchase marked as failed", zap.String("sessionID", sessionID))
	return nil
}
