package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockCreditRepository is a mock type for the CreditRepository type
type MockCreditRepository struct {
	mock.Mock
}

func (_m *MockCreditRepository) CreateTransaction(ctx context.Context, querier interfaces.DBTX, tx *models.CreditTransaction) error {
	ret := _m.Called(ctx, querier, tx)
	return ret.Error(0)
}

func (_m *MockCreditRepository) ListTransactions(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	ret := _m.Called(ctx, querier, userID, limit, offset)

	var r0 []*models.CreditTransaction
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.CreditTransaction)
	}
	return r0, ret.Error(1)
}

func (_m *MockCreditRepository) SumEarnedSince(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, descriptionPrefix string, since time.Time) (int, error) {
	ret := _m.Called(ctx, querier, userID, descriptionPrefix, since)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockCreditRepository) ExistsEarnedForStory(ctx context.Context, querier interfaces.DBTX, userID, storyID uuid.UUID, description string) (bool, error) {
	ret := _m.Called(ctx, querier, userID, storyID, description)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockCreditRepository) GetPackageByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.CreditPackage, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.CreditPackage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.CreditPackage)
	}
	return r0, ret.Error(1)
}

func (_m *MockCreditRepository) ListActivePackages(ctx context.Context, querier interfaces.DBTX) ([]*models.CreditPackage, error) {
	ret := _m.Called(ctx, querier)

	var r0 []*models.CreditPackage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.CreditPackage)
	}
	return r0, ret.Error(1)
}

func (_m *MockCreditRepository) CreateSocialShare(ctx context.Context, querier interfaces.DBTX, share *models.SocialShare) error {
	ret := _m.Called(ctx, querier, share)
	return ret.Error(0)
}

func (_m *MockCreditRepository) HasShareToday(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID, platform string, dayStart time.Time) (bool, error) {
	ret := _m.Called(ctx, querier, userID, platform, dayStart)
	return ret.Bool(0), ret.Error(1)
}

// NewMockCreditRepository creates a new instance of MockCreditRepository.
func NewMockCreditRepository(t interface {
	mock.TestingT
	Helper()
}) *MockCreditRepository {
	m := &MockCreditRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.CreditRepository = (*MockCreditRepository)(nil)

// MockCreditLedger is a mock type for the service CreditLedger type
type MockCreditLedger struct {
	mock.Mock
}

func (_m *MockCreditLedger) AddCreditsTx(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID, amount int, txType models.TransactionType, description string, refs models.TransactionRefs) (int, error) {
	ret := _m.Called(ctx, tx, userID, amount, txType, description, refs)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockCreditLedger) DeductCreditsTx(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID, amount int, description string, refs models.TransactionRefs) (int, error) {
	ret := _m.Called(ctx, tx, userID, amount, description, refs)
	return ret.Int(0), ret.Error(1)
}

// NewMockCreditLedger creates a new instance of MockCreditLedger.
func NewMockCreditLedger(t interface {
	mock.TestingT
	Helper()
}) *MockCreditLedger {
	m := &MockCreditLedger{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
