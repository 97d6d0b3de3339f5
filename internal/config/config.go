package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	"plotvote-server/internal/utils"
)

// Config содержит конфигурацию API-сервера
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки PostgreSQL
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки RabbitMQ
	RabbitMQURL         string `envconfig:"RABBITMQ_URL" required:"true"`
	GenerationTaskQueue string `envconfig:"GENERATION_TASK_QUEUE" default:"chapter_generation_tasks"`
	SettingsExchange    string `envconfig:"SETTINGS_EXCHANGE" default:"site_settings_updates"`

	// Настройки Redis
	RedisAddr           string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB             int           `envconfig:"REDIS_DB" default:"0"`
	ReaderCountCacheTTL time.Duration `envconfig:"READER_COUNT_CACHE_TTL" default:"5m"`

	// Настройки JWT
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
	// Секретное поле БЕЗ envconfig тега
	JWTSecret string

	// Настройки AI (для синхронной генерации личных историй)
	AIBaseURL string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel   string        `envconfig:"AI_MODEL" default:"meta-llama/llama-4-scout:free"`
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Настройки платежного провайдера
	PaymentAPIBaseURL string `envconfig:"PAYMENT_API_BASE_URL" default:"https://api.payments.example.com"`
	PaymentSuccessURL string `envconfig:"PAYMENT_SUCCESS_URL" required:"true"`
	PaymentCancelURL  string `envconfig:"PAYMENT_CANCEL_URL" required:"true"`
	// Секретные поля БЕЗ envconfig тегов
	PaymentAPIKey        string
	PaymentWebhookSecret string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации сервера: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AIAPIKey, loadErr = utils.ReadSecret("ai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.PaymentAPIKey, loadErr = utils.ReadSecret("payment_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.PaymentWebhookSecret, loadErr = utils.ReadSecret("payment_webhook_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация сервера загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%d/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  DB Max Conns: %d", cfg.DBMaxConns)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  Generation Task Queue: %s", cfg.GenerationTaskQueue)
	log.Printf("  Settings Exchange: %s", cfg.SettingsExchange)
	log.Printf("  Redis Addr: %s", cfg.RedisAddr)
	log.Printf("  AI Base URL: %s", cfg.AIBaseURL)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  Payment API Base URL: %s", cfg.PaymentAPIBaseURL)
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")
	log.Println("  AI API Key: [ЗАГРУЖЕН]")
	log.Println("  Payment API Key: [ЗАГРУЖЕН]")
	log.Println("  Payment Webhook Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}
