package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/mocks"
	"plotvote-server/internal/models"
	"plotvote-server/internal/payments"
	"plotvote-server/internal/service"
)

const testWebhookSecret = "whsec_test"

type paymentMocks struct {
	creditRepo   *mocks.MockCreditRepository
	purchaseRepo *mocks.MockPurchaseRepository
	ledger       *mocks.MockCreditLedger
	provider     *mocks.MockPaymentProvider
}

func newPaymentService(t *testing.T) (service.PaymentService, paymentMocks) {
	m := paymentMocks{
		creditRepo:   mocks.NewMockCreditRepository(t),
		purchaseRepo: mocks.NewMockPurchaseRepository(t),
		ledger:       mocks.NewMockCreditLedger(t),
		provider:     mocks.NewMockPaymentProvider(t),
	}
	svc := service.NewPaymentService(
		nil,
		&mocks.MockTxManager{},
		m.creditRepo,
		m.purchaseRepo,
		m.ledger,
		m.provider,
		service.PaymentConfig{
			WebhookSecret: testWebhookSecret,
			SuccessURL:    "https://example.com/success",
			CancelURL:     "https://example.com/cancel",
		},
		zap.NewNop(),
	)
	return svc, m
}

func signedWebhook(t *testing.T, eventType, sessionID, paymentIntentID string) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"type": eventType,
		"data": map[string]any{"session_id": sessionID, "payment_intent_id": paymentIntentID},
	})
	require.NoError(t, err)
	return payload, payments.SignPayload(payload, testWebhookSecret, time.Now())
}

func TestPaymentService_CreateCheckout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	packageID := uuid.New()

	pkg := &models.CreditPackage{
		ID:           packageID,
		Name:         "Starter",
		Credits:      100,
		BonusCredits: 10,
		PriceCents:   499,
		Currency:     "USD",
		IsActive:     true,
	}

	t.Run("creates pending purchase with provider session", func(t *testing.T) {
		svc, m := newPaymentService(t)

		m.creditRepo.On("GetPackageByID", mock.Anything, mock.Anything, packageID).Return(pkg, nil).Once()
		m.provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p interfaces.CheckoutParams) bool {
			return p.PackageName == "Starter" && p.AmountCents == 499 && p.Currency == "USD"
		})).Return(&models.CheckoutSession{SessionID: "cs_123", CheckoutURL: "https://pay.example.com/cs_123"}, nil).Once()
		m.purchaseRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.Purchase) bool {
			return p.UserID == userID && p.Status == models.PurchaseStatusPending &&
				p.ExternalSessionID == "cs_123" && p.CreditsGranted == 110
		})).Return(nil).Once()

		session, err := svc.CreateCheckout(ctx, userID, packageID)

		require.NoError(t, err)
		assert.Equal(t, "cs_123", session.SessionID)
		m.purchaseRepo.AssertExpectations(t)
	})

	t.Run("inactive package not purchasable", func(t *testing.T) {
		svc, m := newPaymentService(t)
		inactive := *pkg
		inactive.IsActive = false

		m.creditRepo.On("GetPackageByID", mock.Anything, mock.Anything, packageID).Return(&inactive, nil).Once()

		_, err := svc.CreateCheckout(ctx, userID, packageID)

		assert.ErrorIs(t, err, models.ErrPackageNotFound)
	})
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	purchaseID := uuid.New()

	pendingPurchase := func() *models.Purchase {
		return &models.Purchase{
			ID:                purchaseID,
			UserID:            userID,
			ExternalSessionID: "cs_123",
			Status:            models.PurchaseStatusPending,
			CreditsGranted:    110,
		}
	}

	t.Run("completed event grants credits exactly once", func(t *testing.T) {
		svc, m := newPaymentService(t)
		payload, signature := signedWebhook(t, payments.EventCheckoutCompleted, "cs_123", "pi_456")

		m.purchaseRepo.On("GetBySessionIDForUpdate", mock.Anything, mock.Anything, "cs_123").
			Return(pendingPurchase(), nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, userID, 110, models.TransactionTypePurchase,
			fmt.Sprintf("Credit package purchase: %s", purchaseID), models.TransactionRefs{}).Return(110, nil).Once()
		// Идентификатор платежа провайдера сохраняется вместе со статусом
		m.purchaseRepo.On("MarkCompleted", mock.Anything, mock.Anything, purchaseID, "pi_456").
			Return(nil).Once()

		err := svc.HandleWebhook(ctx, payload, signature)

		require.NoError(t, err)
		m.ledger.AssertExpectations(t)
		m.purchaseRepo.AssertExpectations(t)
	})

	t.Run("replayed completed event is acknowledged without granting", func(t *testing.T) {
		svc, m := newPaymentService(t)
		payload, signature := signedWebhook(t, payments.EventCheckoutCompleted, "cs_123", "pi_456")

		settled := pendingPurchase()
		settled.Status = models.PurchaseStatusCompleted
		m.purchaseRepo.On("GetBySessionIDForUpdate", mock.Anything, mock.Anything, "cs_123").
			Return(settled, nil).Once()

		err := svc.HandleWebhook(ctx, payload, signature)

		require.NoError(t, err)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.purchaseRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed event marks purchase failed", func(t *testing.T) {
		svc, m := newPaymentService(t)
		payload, signature := signedWebhook(t, payments.EventCheckoutFailed, "cs_123", "")

		m.purchaseRepo.On("GetBySessionIDForUpdate", mock.Anything, mock.Anything, "cs_123").
			Return(pendingPurchase(), nil).Once()
		m.purchaseRepo.On("UpdateStatus", mock.Anything, mock.Anything, purchaseID, models.PurchaseStatusFailed).
			Return(nil).Once()

		err := svc.HandleWebhook(ctx, payload, signature)

		require.NoError(t, err)
		m.purchaseRepo.AssertExpectations(t)
	})

	t.Run("invalid signature rejected", func(t *testing.T) {
		svc, _ := newPaymentService(t)
		payload, _ := signedWebhook(t, payments.EventCheckoutCompleted, "cs_123", "pi_456")

		err := svc.HandleWebhook(ctx, payload, "t=123,v1=deadbeef")

		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})

	t.Run("unknown event type acknowledged", func(t *testing.T) {
		svc, _ := newPaymentService(t)
		payload, signature := signedWebhook(t, "checkout.expired", "cs_123", "")

		err := svc.HandleWebhook(ctx, payload, signature)

		require.NoError(t, err)
	})
}
