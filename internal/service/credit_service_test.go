package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plotvote-server/internal/mocks"
	"plotvote-server/internal/models"
	"plotvote-server/internal/service"
)

func newCreditService(userRepo *mocks.MockUserRepository, creditRepo *mocks.MockCreditRepository) service.CreditService {
	return service.NewCreditService(nil, &mocks.MockTxManager{}, userRepo, creditRepo, zap.NewNop())
}

func TestCreditService_AddCredits(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("adds credits and writes audit row", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		creditRepo := mocks.NewMockCreditRepository(t)

		userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, Credits: 7}, nil).Once()
		userRepo.On("UpdateCredits", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.Credits == 12 && p.TotalEarned == 5 && p.TotalPurchased == 0
		})).Return(nil).Once()
		creditRepo.On("CreateTransaction", mock.Anything, mock.Anything, mock.MatchedBy(func(tx *models.CreditTransaction) bool {
			return tx.UserID == userID && tx.Amount == 5 &&
				tx.Type == models.TransactionTypeEarned && tx.BalanceAfter == 12
		})).Return(nil).Once()

		svc := newCreditService(userRepo, creditRepo)
		balance, err := svc.AddCredits(ctx, userID, 5, models.TransactionTypeEarned, "Daily login reward (day 2)")

		require.NoError(t, err)
		assert.Equal(t, 12, balance)
		creditRepo.AssertExpectations(t)
	})

	t.Run("purchase counts toward total purchased", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		creditRepo := mocks.NewMockCreditRepository(t)

		userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, Credits: 0}, nil).Once()
		userRepo.On("UpdateCredits", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.Credits == 100 && p.TotalPurchased == 100 && p.TotalEarned == 0
		})).Return(nil).Once()
		creditRepo.On("CreateTransaction", mock.Anything, mock.Anything, mock.MatchedBy(func(tx *models.CreditTransaction) bool {
			return tx.Amount == 100 && tx.Type == models.TransactionTypePurchase
		})).Return(nil).Once()

		svc := newCreditService(userRepo, creditRepo)
		balance, err := svc.AddCredits(ctx, userID, 100, models.TransactionTypePurchase, "Credit package: Starter")

		require.NoError(t, err)
		assert.Equal(t, 100, balance)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc := newCreditService(mocks.NewMockUserRepository(t), mocks.NewMockCreditRepository(t))
		_, err := svc.AddCredits(ctx, userID, 0, models.TransactionTypeBonus, "nothing")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("rejects spent type on additions", func(t *testing.T) {
		svc := newCreditService(mocks.NewMockUserRepository(t), mocks.NewMockCreditRepository(t))
		_, err := svc.AddCredits(ctx, userID, 5, models.TransactionTypeSpent, "wrong direction")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestCreditService_DeductCredits(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("deducts credits and records negative amount", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		creditRepo := mocks.NewMockCreditRepository(t)

		userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, Credits: 10}, nil).Once()
		userRepo.On("UpdateCredits", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.Credits == 7 && p.TotalUsed == 3
		})).Return(nil).Once()
		// Списание лежит в аудите со знаком минус: сумма строк равна балансу
		creditRepo.On("CreateTransaction", mock.Anything, mock.Anything, mock.MatchedBy(func(tx *models.CreditTransaction) bool {
			return tx.Amount == -3 && tx.Type == models.TransactionTypeSpent && tx.BalanceAfter == 7
		})).Return(nil).Once()

		svc := newCreditService(userRepo, creditRepo)
		balance, err := svc.DeductCredits(ctx, userID, 3, "Personal chapter generation")

		require.NoError(t, err)
		assert.Equal(t, 7, balance)
		creditRepo.AssertExpectations(t)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository(t)
		userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, Credits: 0}, nil).Once()

		svc := newCreditService(userRepo, mocks.NewMockCreditRepository(t))
		_, err := svc.DeductCredits(ctx, userID, 1, "Personal chapter generation")

		assert.ErrorIs(t, err, models.ErrInsufficientCredits)
	})
}

func TestCreditService_GetBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	userRepo := mocks.NewMockUserRepository(t)
	userRepo.On("GetProfile", mock.Anything, mock.Anything, userID).
		Return(&models.UserProfile{UserID: userID, Credits: 42}, nil).Once()

	svc := newCreditService(userRepo, mocks.NewMockCreditRepository(t))
	balance, err := svc.GetBalance(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 42, balance)
}
