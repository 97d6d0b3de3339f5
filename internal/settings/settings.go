package settings

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// Значения по умолчанию для настроек, используемых кодом.
const (
	DefaultBetaMode    = false
	DefaultVotesNeeded = 10
)

// Service управляет настройками сайта, загруженными из БД.
// Обеспечивает потокобезопасный доступ к кэшу настроек; изменения
// рассылаются другим инстансам через fanout-обменник.
type Service struct {
	logger    *zap.Logger
	repo      interfaces.SettingsRepository
	publisher interfaces.SettingsEventPublisher
	db        interfaces.DBTX
	mu        sync.RWMutex
	settings  map[string]string
}

// NewService создает сервис настроек и загружает начальный кэш из БД.
func NewService(repo interfaces.SettingsRepository, publisher interfaces.SettingsEventPublisher, db interfaces.DBTX, logger *zap.Logger) (*Service, error) {
	s := &Service{
		logger:    logger.Named("SettingsService"),
		repo:      repo,
		publisher: publisher,
		db:        db,
		settings:  make(map[string]string),
	}

	s.logger.Info("Загрузка начальных настроек сайта...")
	if err := s.loadAll(); err != nil {
		s.logger.Error("Не удалось загрузить начальные настройки сайта", zap.Error(err))
		// Считаем ошибку критичной, если БД недоступна при старте.
		return nil, err
	}
	s.logger.Info("Настройки сайта загружены", zap.Int("count", len(s.settings)))

	return s, nil
}

// loadAll загружает все настройки из репозитория в кэш.
func (s *Service) loadAll() error {
	ctx := context.Background()
	all, err := s.repo.GetAll(ctx, s.db)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = make(map[string]string)
	for _, setting := range all {
		s.settings[setting.Key] = setting.Value
	}
	return nil
}

func (s *Service) get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.settings[key]
	return val, ok
}

// GetString возвращает строковое значение настройки или значение по умолчанию.
func (s *Service) GetString(key string, defaultValue string) string {
	val, ok := s.get(key)
	if !ok || val == "" {
		return defaultValue
	}
	return val
}

// GetInt возвращает целочисленное значение настройки или значение по умолчанию.
func (s *Service) GetInt(key string, defaultValue int) int {
	strVal, ok := s.get(key)
	if !ok {
		return defaultValue
	}
	intVal, err := strconv.Atoi(strVal)
	if err != nil {
		s.logger.Warn("Ошибка парсинга int, используется значение по умолчанию",
			zap.String("key", key), zap.String("value", strVal), zap.Error(err))
		return defaultValue
	}
	return intVal
}

// GetBool возвращает булево значение настройки или значение по умолчанию.
func (s *Service) GetBool(key string, defaultValue bool) bool {
	strVal, ok := s.get(key)
	if !ok {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(strVal)
	if err != nil {
		s.logger.Warn("Ошибка парсинга bool, используется значение по умолчанию",
			zap.String("key", key), zap.String("value", strVal), zap.Error(err))
		return defaultValue
	}
	return boolVal
}

// BetaMode сообщает, включен ли режим беты.
func (s *Service) BetaMode() bool {
	return s.GetBool(models.SettingKeyBetaMode, DefaultBetaMode)
}

// VotesNeeded возвращает порог апвоутов для активации питча.
func (s *Service) VotesNeeded() int {
	return s.GetInt(models.SettingKeyDefaultVotesNeed, DefaultVotesNeeded)
}

// Update обновляет значение настройки в кэше.
// Вызывается консьюмером при получении события обновления.
func (s *Service) Update(setting models.SiteSetting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("Обновление настройки в кэше", zap.String("key", setting.Key), zap.String("new_value", setting.Value))
	s.settings[setting.Key] = setting.Value
}

// Set сохраняет настройку в БД, обновляет локальный кэш
// и рассылает событие остальным инстансам.
func (s *Service) Set(ctx context.Context, key, value string) error {
	setting := &models.SiteSetting{Key: key, Value: value}
	if err := s.repo.Upsert(ctx, s.db, setting); err != nil {
		return err
	}

	s.Update(*setting)

	if s.publisher != nil {
		if err := s.publisher.PublishSettingUpdate(ctx, *setting); err != nil {
			// Локальный кэш уже обновлен, остальные инстансы подтянут значение при рестарте
			s.logger.Error("Не удалось опубликовать событие изменения настройки",
				zap.String("key", key), zap.Error(err))
		}
	}

	return nil
}
