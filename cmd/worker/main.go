package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"plotvote-server/internal/ai"
	"plotvote-server/internal/config"
	"plotvote-server/internal/database"
	"plotvote-server/internal/logger"
	"plotvote-server/internal/messaging"
	"plotvote-server/internal/worker"
	pkgdatabase "plotvote-server/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации воркера: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	db, err := pkgdatabase.New(pkgdatabase.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}
	defer db.Close()

	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Не удалось подключиться к RabbitMQ: %v", err)
	}
	defer rabbitConn.Close()

	aiClient, err := ai.New(ai.Config{
		APIKey:     cfg.AIAPIKey,
		BaseURL:    cfg.AIBaseURL,
		ModelName:  cfg.AIModel,
		Timeout:    cfg.AITimeout,
		MaxRetries: cfg.AIMaxAttempts,
		RetryWait:  cfg.AIBaseRetryWait,
	})
	if err != nil {
		log.Fatalf("Не удалось создать AI клиента: %v", err)
	}

	storyRepo := database.NewPgStoryRepository(appLogger)
	chapterRepo := database.NewPgChapterRepository(appLogger)
	promptRepo := database.NewPgPromptRepository(appLogger)

	generationHandler := worker.NewGenerationHandler(db.Pool, storyRepo, chapterRepo, promptRepo, aiClient)

	consumer, err := messaging.NewTaskConsumer(rabbitConn, generationHandler, cfg.GenerationTaskQueue)
	if err != nil {
		log.Fatalf("Не удалось создать consumer задач генерации: %v", err)
	}

	if cfg.PushGatewayURL != "" {
		if err := worker.InitMetricsPusher(cfg.PushGatewayURL); err != nil {
			log.Printf("[WARN] Не удалось инициализировать metrics pusher: %v", err)
		} else {
			worker.StartMetricsPusher(cfg.MetricsInterval)
			defer worker.CleanupMetrics()
		}
	}

	// StartConsuming блокируется до остановки consumer'а,
	// поэтому запускаем в отдельной горутине
	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Fatalf("Не удалось запустить обработку очереди: %v", err)
		}
	}()
	log.Printf("Воркер запущен, очередь: %s", cfg.GenerationTaskQueue)

	// Health endpoint для liveness-проб
	healthServer := &http.Server{Addr: ":" + cfg.HealthPort, Handler: healthMux()}
	go func() {
		appLogger.Info("Запуск health endpoint", zap.String("port", cfg.HealthPort))
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[WARN] Health endpoint остановлен с ошибкой: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Получен сигнал завершения, останавливаем воркер...")
	consumer.Stop()
	healthServer.Close()
	log.Println("Воркер остановлен")
}

func healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	return mux
}

// connectRabbitMQ подключается к RabbitMQ с несколькими попытками.
func connectRabbitMQ(url string) (*amqp091.Connection, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	var conn *amqp091.Connection
	var err error
	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Printf("Не удалось подключиться к RabbitMQ (попытка %d/%d): %v", i, maxRetries, err)
		time.Sleep(retryDelay)
	}
	return nil, err
}
