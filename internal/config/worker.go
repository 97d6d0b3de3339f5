package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	"plotvote-server/internal/utils"
)

// WorkerConfig содержит конфигурацию воркера генерации глав
type WorkerConfig struct {
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HealthPort string `envconfig:"WORKER_HEALTH_PORT" default:"8081"`

	// Настройки PostgreSQL
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNECTIONS" default:"5"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки RabbitMQ
	RabbitMQURL         string `envconfig:"RABBITMQ_URL" required:"true"`
	GenerationTaskQueue string `envconfig:"GENERATION_TASK_QUEUE" default:"chapter_generation_tasks"`
	SettingsExchange    string `envconfig:"SETTINGS_EXCHANGE" default:"site_settings_updates"`

	// Настройки AI
	AIBaseURL       string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel         string        `envconfig:"AI_MODEL" default:"meta-llama/llama-4-scout:free"`
	AIMaxAttempts   int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIBaseRetryWait time.Duration `envconfig:"AI_BASE_RETRY_WAIT" default:"1s"`
	AITimeout       time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Настройки Prometheus Push Gateway
	PushGatewayURL  string        `envconfig:"PUSH_GATEWAY_URL" default:""`
	MetricsInterval time.Duration `envconfig:"METRICS_PUSH_INTERVAL" default:"15s"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *WorkerConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadWorkerConfig загружает конфигурацию воркера из переменных окружения и секретов
func LoadWorkerConfig() (*WorkerConfig, error) {
	var cfg WorkerConfig
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации воркера: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AIAPIKey, loadErr = utils.ReadSecret("ai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация воркера загружена (секреты из файлов):")
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  Health Port: %s", cfg.HealthPort)
	log.Printf("  DB DSN: postgres://%s:***@%s:%d/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  Generation Task Queue: %s", cfg.GenerationTaskQueue)
	log.Printf("  AI Base URL: %s", cfg.AIBaseURL)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  AI Max Attempts: %d", cfg.AIMaxAttempts)
	log.Printf("  Push Gateway URL: %s", cfg.PushGatewayURL)
	log.Println("  AI API Key: [ЗАГРУЖЕН]")

	return &cfg, nil
}
