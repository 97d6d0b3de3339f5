package interfaces

import (
	"context"

	"plotvote-server/internal/models"
)

// CheckoutParams — параметры создания checkout-сессии у платежного провайдера.
type CheckoutParams struct {
	PurchaseID  string
	PackageName string
	AmountCents int
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// PaymentProvider абстрагирует платежный шлюз.
type PaymentProvider interface {
	// CreateCheckoutSession создает сессию оплаты и возвращает ее ID и URL.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*models.CheckoutSession, error)
}
