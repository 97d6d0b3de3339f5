package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// CreditLedger — транзакционные операции над балансом кредитов.
// Методы принимают querier, чтобы встраиваться в транзакции других сервисов
// (награды, платежи, генерация личных глав).
type CreditLedger interface {
	// AddCreditsTx начисляет кредиты под блокировкой строки профиля
	// и пишет строку аудита с положительной суммой. Возвращает баланс после операции.
	AddCreditsTx(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID, amount int, txType models.TransactionType, description string, refs models.TransactionRefs) (int, error)

	// DeductCreditsTx списывает кредиты, записывая отрицательную сумму в аудит.
	// Возвращает models.ErrInsufficientCredits, если баланса не хватает.
	DeductCreditsTx(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID, amount int, description string, refs models.TransactionRefs) (int, error)
}

// CreditService — операции с кредитами пользователя.
type CreditService interface {
	CreditLedger

	AddCredits(ctx context.Context, userID uuid.UUID, amount int, txType models.TransactionType, description string) (int, error)
	DeductCredits(ctx context.Context, userID uuid.UUID, amount int, description string) (int, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error)
}

type creditServiceImpl struct {
	db         interfaces.DBTX
	txManager  interfaces.TxManager
	userRepo   interfaces.UserRepository
	creditRepo interfaces.CreditRepository
	logger     *zap.Logger
}

// NewCreditService создает новый экземпляр CreditService.
func NewCreditService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	userRepo interfaces.UserRepository,
	creditRepo interfaces.CreditRepository,
	logger *zap.Logger,
) CreditService {
	return &creditServiceImpl{
		db:         db,
		txManager:  txManager,
		userRepo:   userRepo,
		creditRepo: creditRepo,
		logger:     logger.Named("CreditService"),
	}
}

// AddCreditsTx начисляет кредиты внутри уже открытой транзакции.
func (s *creditServiceImpl) AddCreditsTx(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID, amount int, txType models.TransactionType, description string, refs models.TransactionRefs) (int, error) {
	if amount <= 0 || txType == models.TransactionTypeSpent {
		return 0, models.ErrInvalidInput
	}

	profile, err := s.userRepo.GetProfileForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	profile.Credits += amount
	if txType == models.TransactionTypePurchase {
		profile.TotalPurchased += amount
	} else {
		profile.TotalEarned += amount
	}
	if err := s.userRepo.UpdateCredits(ctx, tx, profile); err != nil {
		return 0, err
	}

	record := &models.CreditTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		Description:  description,
		StoryID:      refs.StoryID,
		ChapterID:    refs.ChapterID,
		BalanceAfter: profile.Credits,
	}
	if err := s.creditRepo.CreateTransaction(ctx, tx, record); err != nil {
		return 0, err
	}

	s.logger.Info("Credits added",
		zap.String("userID", userID.String()),
		zap.Int("amount", amount),
		zap.String("type", string(txType)),
		zap.Int("balanceAfter", profile.Credits),
		zap.String("description", description))
	return profile.Credits, nil
}

// DeductCreditsTx списывает кредиты внутри уже открытой транзакции.
// В аудит пишется отрицательная сумма, чтобы сумма строк сходилась с балансом.
func (s *creditServiceImpl) DeductCreditsTx(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID, amount int, description string, refs models.TransactionRefs) (int, error) {
	if amount <= 0 {
		return 0, models.ErrInvalidInput
	}

	profile, err := s.userRepo.GetProfileForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	if profile.Credits < amount {
		return 0, models.ErrInsufficientCredits
	}

	profile.Credits -= amount
	profile.TotalUsed += amount
	if err := s.userRepo.UpdateCredits(ctx, tx, profile); err != nil {
		return 0, err
	}

	record := &models.CreditTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Amount:       -amount,
		Type:         models.TransactionTypeSpent,
		Description:  description,
		StoryID:      refs.StoryID,
		ChapterID:    refs.ChapterID,
		BalanceAfter: profile.Credits,
	}
	if err := s.creditRepo.CreateTransaction(ctx, tx, record); err != nil {
		return 0, err
	}

	s.logger.Info("Credits deducted",
		zap.String("userID", userID.String()),
		zap.Int("amount", amount),
		zap.Int("balanceAfter", profile.Credits),
		zap.String("description", description))
	return profile.Credits, nil
}

// AddCredits начисляет кредиты в собственной транзакции.
func (s *creditServiceImpl) AddCredits(ctx context.Context, userID uuid.UUID, amount int, txType models.TransactionType, description string) (int, error) {
	var balance int
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		var txErr error
		balance, txErr = s.AddCreditsTx(ctx, tx, userID, amount, txType, description, models.TransactionRefs{})
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// DeductCredits списывает кредиты в собственной транзакции.
func (s *creditServiceImpl) DeductCredits(ctx context.Context, userID uuid.UUID, amount int, description string) (int, error) {
	var balance int
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		var txErr error
		balance, txErr = s.DeductCreditsTx(ctx, tx, userID, amount, description, models.TransactionRefs{})
		return txErr
	})
	if err != nil {
		if !errors.Is(err, models.ErrInsufficientCredits) && !errors.Is(err, models.ErrUserNotFound) {
			s.logger.Error("Failed to deduct credits", zap.String("userID", userID.String()), zap.Error(err))
		}
		return 0, err
	}
	return balance, nil
}

// GetBalance возвращает текущий баланс пользователя.
func (s *creditServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	profile, err := s.userRepo.GetProfile(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	return profile.Credits, nil
}

// ListTransactions возвращает историю операций пользователя.
func (s *creditServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.creditRepo.ListTransactions(ctx, s.db, userID, limit, offset)
}
