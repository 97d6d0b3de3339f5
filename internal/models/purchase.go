package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseStatus определяет состояние покупки пакета кредитов.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// Purchase — покупка пакета кредитов через платежный провайдер.
// Кредиты начисляются ровно один раз: переход pending -> completed
// охраняется проверкой статуса внутри транзакции.
type Purchase struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	UserID            uuid.UUID      `json:"user_id" db:"user_id"`
	PackageID         uuid.UUID      `json:"package_id" db:"package_id"`
	ExternalSessionID string         `json:"external_session_id" db:"external_session_id"` // ID checkout-сессии провайдера
	PaymentIntentID   *string        `json:"payment_intent_id,omitempty" db:"payment_intent_id"` // ID платежа провайдера, заполняется при завершении
	Status            PurchaseStatus `json:"status" db:"status"`
	CreditsGranted    int            `json:"credits_granted" db:"credits_granted"`
	AmountCents       int            `json:"amount_cents" db:"amount_cents"`
	Currency          string         `json:"currency" db:"currency"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}

// CheckoutSession — созданная у провайдера сессия оплаты.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}
