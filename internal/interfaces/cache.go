package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// ReaderCountCache кэширует число квалифицированных читателей истории,
// чтобы не пересчитывать его в БД на каждое обновление прогресса чтения.
type ReaderCountCache interface {
	// Get возвращает закэшированное значение. found=false при промахе.
	Get(ctx context.Context, storyID uuid.UUID) (count int, found bool, err error)

	// Set записывает значение с TTL кэша.
	Set(ctx context.Context, storyID uuid.UUID, count int) error

	// Invalidate сбрасывает значение для истории.
	Invalidate(ctx context.Context, storyID uuid.UUID) error
}
