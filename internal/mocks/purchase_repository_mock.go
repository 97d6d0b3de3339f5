package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockPurchaseRepository is a mock type for the PurchaseRepository type
type MockPurchaseRepository struct {
	mock.Mock
}

func (_m *MockPurchaseRepository) Create(ctx context.Context, querier interfaces.DBTX, purchase *models.Purchase) error {
	ret := _m.Called(ctx, querier, purchase)
	return ret.Error(0)
}

func (_m *MockPurchaseRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Purchase, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Purchase
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Purchase)
	}
	return r0, ret.Error(1)
}

func (_m *MockPurchaseRepository) GetBySessionIDForUpdate(ctx context.Context, querier interfaces.DBTX, sessionID string) (*models.Purchase, error) {
	ret := _m.Called(ctx, querier, sessionID)

	var r0 *models.Purchase
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Purchase)
	}
	return r0, ret.Error(1)
}

func (_m *MockPurchaseRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.PurchaseStatus) error {
	ret := _m.Called(ctx, querier, id, status)
	return ret.Error(0)
}

func (_m *MockPurchaseRepository) MarkCompleted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, paymentIntentID string) error {
	ret := _m.Called(ctx, querier, id, paymentIntentID)
	return ret.Error(0)
}

func (_m *MockPurchaseRepository) ListByUser(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) ([]*models.Purchase, error) {
	ret := _m.Called(ctx, querier, userID)

	var r0 []*models.Purchase
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Purchase)
	}
	return r0, ret.Error(1)
}

// NewMockPurchaseRepository creates a new instance of MockPurchaseRepository.
func NewMockPurchaseRepository(t interface {
	mock.TestingT
	Helper()
}) *MockPurchaseRepository {
	m := &MockPurchaseRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.PurchaseRepository = (*MockPurchaseRepository)(nil)
