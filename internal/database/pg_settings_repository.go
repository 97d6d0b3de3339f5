package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

const (
	getSiteSettingByKeyQuery = `SELECT key, value, created_at, updated_at FROM site_settings WHERE key = $1`
	getAllSiteSettingsQuery  = `SELECT key, value, created_at, updated_at FROM site_settings ORDER BY key`
	upsertSiteSettingQuery   = `
        INSERT INTO site_settings (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()`
)

// pgSettingsRepository реализует интерфейс SettingsRepository для PostgreSQL.
type pgSettingsRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.SettingsRepository = (*pgSettingsRepository)(nil)

// NewPgSettingsRepository создает новый экземпляр репозитория настроек.
func NewPgSettingsRepository(logger *zap.Logger) interfaces.SettingsRepository {
	return &pgSettingsRepository{logger: logger.Named("PgSettingsRepo")}
}

// GetByKey возвращает настройку по ключу.
func (r *pgSettingsRepository) GetByKey(ctx context.Context, querier interfaces.DBTX, key string) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	err := pgxscan.Get(ctx, querier, &setting, getSiteSettingByKeyQuery, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Site setting not found", zap.String("key", key))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get site setting", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get site setting %s: %w", key, err)
	}
	return &setting, nil
}

// GetAll возвращает все настройки.
func (r *pgSettingsRepository) GetAll(ctx context.Context, querier interfaces.DBTX) ([]*models.SiteSetting, error) {
	var settings []*models.SiteSetting
	err := pgxscan.Select(ctx, querier, &settings, getAllSiteSettingsQuery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*models.SiteSetting{}, nil
		}
		r.logger.Error("Failed to get all site settings", zap.Error(err))
		return nil, fmt.Errorf("failed to get all site settings: %w", err)
	}
	if settings == nil {
		settings = []*models.SiteSetting{}
	}
	return settings, nil
}

// Upsert создает или обновляет настройку.
func (r *pgSettingsRepository) Upsert(ctx context.Context, querier interfaces.DBTX, setting *models.SiteSetting) error {
	_, err := querier.Exec(ctx, upsertSiteSettingQuery, setting.Key, setting.Value)
	if err != nil {
		r.logger.Error("Failed to upsert site setting", zap.String("key", setting.Key), zap.Error(err))
		return fmt.Errorf("failed to upsert site setting %s: %w", setting.Key, err)
	}
	r.logger.Info("Site setting upserted", zap.String("key", setting.Key))
	return nil
}
