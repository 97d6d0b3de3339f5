package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
)

const readerCountKeyPrefix = "story:readers:"

// redisReaderCountCache кэширует счетчики квалифицированных читателей в Redis.
type redisReaderCountCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.ReaderCountCache = (*redisReaderCountCache)(nil)

// NewRedisReaderCountCache создает новый кэш счетчиков читателей.
func NewRedisReaderCountCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.ReaderCountCache {
	return &redisReaderCountCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("ReaderCountCache"),
	}
}

func readerCountKey(storyID uuid.UUID) string {
	return readerCountKeyPrefix + storyID.String()
}

// Get возвращает закэшированное значение.
func (c *redisReaderCountCache) Get(ctx context.Context, storyID uuid.UUID) (int, bool, error) {
	count, err := c.client.Get(ctx, readerCountKey(storyID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		c.logger.Error("Failed to get reader count from cache", zap.String("storyID", storyID.String()), zap.Error(err))
		return 0, false, fmt.Errorf("failed to get reader count: %w", err)
	}
	return count, true, nil
}

// Set записывает значение с TTL.
func (c *redisReaderCountCache) Set(ctx context.Context, storyID uuid.UUID, count int) error {
	if err := c.client.Set(ctx, readerCountKey(storyID), count, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to set reader count in cache", zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to set reader count: %w", err)
	}
	return nil
}

// Invalidate сбрасывает значение для истории.
func (c *redisReaderCountCache) Invalidate(ctx context.Context, storyID uuid.UUID) error {
	if err := c.client.Del(ctx, readerCountKey(storyID)).Err(); err != nil {
		c.logger.Error("Failed to invalidate reader count cache", zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to invalidate reader count: %w", err)
	}
	return nil
}
