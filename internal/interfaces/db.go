package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX — общая абстракция над пулом соединений и транзакцией.
// Репозитории принимают его параметром, чтобы один и тот же метод
// работал и внутри транзакции, и напрямую через пул.
// Совместим с pgxpool.Pool, pgx.Conn и pgx.Tx, а также с pgxscan.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager выполняет функцию внутри транзакции БД.
// При ошибке или панике транзакция откатывается.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}
