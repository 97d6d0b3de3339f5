package mocks

import (
	"context"

	"plotvote-server/internal/interfaces"
)

// MockTxManager немедленно выполняет колбэк, передавая ему настроенный querier.
// Repos в тестах замоканы, поэтому querier обычно nil.
type MockTxManager struct {
	Querier interfaces.DBTX
	Err     error // Если задана, колбэк не выполняется и возвращается эта ошибка
}

func (m *MockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, m.Querier)
}

var _ interfaces.TxManager = (*MockTxManager)(nil)
