package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"plotvote-server/internal/ai"
	"plotvote-server/internal/authutils"
	"plotvote-server/internal/config"
	"plotvote-server/internal/database"
	"plotvote-server/internal/handler"
	"plotvote-server/internal/logger"
	"plotvote-server/internal/messaging"
	"plotvote-server/internal/middleware"
	"plotvote-server/internal/payments"
	"plotvote-server/internal/service"
	"plotvote-server/internal/settings"
	"plotvote-server/migrations"
	pkgdatabase "plotvote-server/pkg/database"
	"plotvote-server/pkg/migration"
)

func main() {
	// .env нужен только для локальной разработки
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
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
		appLogger.Fatal("Не удалось подключиться к базе данных", zap.Error(err))
	}
	defer db.Close()

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, db.Pool)
	if err := migrator.Up(context.Background()); err != nil {
		appLogger.Fatal("Ошибка применения миграций", zap.Error(err))
	}

	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, appLogger)
	if err != nil {
		appLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()

	// Репозитории не хранят состояния: подключение передается в каждый вызов
	userRepo := database.NewPgUserRepository(appLogger)
	storyRepo := database.NewPgStoryRepository(appLogger)
	promptRepo := database.NewPgPromptRepository(appLogger)
	voteRepo := database.NewPgVoteRepository(appLogger)
	chapterRepo := database.NewPgChapterRepository(appLogger)
	readingRepo := database.NewPgReadingRepository(appLogger)
	creditRepo := database.NewPgCreditRepository(appLogger)
	purchaseRepo := database.NewPgPurchaseRepository(appLogger)
	settingsRepo := database.NewPgSettingsRepository(appLogger)

	txManager := database.NewTransactionHelper(db.Pool, appLogger)
	readerCache := database.NewRedisReaderCountCache(redisClient, cfg.ReaderCountCacheTTL, appLogger)

	taskPublisher, err := messaging.NewRabbitMQTaskPublisher(rabbitConn, cfg.GenerationTaskQueue)
	if err != nil {
		appLogger.Fatal("Не удалось создать publisher задач генерации", zap.Error(err))
	}
	defer taskPublisher.Close()

	settingsPublisher, err := messaging.NewRabbitMQSettingsPublisher(rabbitConn, cfg.SettingsExchange)
	if err != nil {
		appLogger.Fatal("Не удалось создать publisher настроек", zap.Error(err))
	}
	defer settingsPublisher.Close()

	settingsService, err := settings.NewService(settingsRepo, settingsPublisher, db.Pool, appLogger)
	if err != nil {
		appLogger.Fatal("Не удалось загрузить настройки сайта", zap.Error(err))
	}

	settingsConsumer := messaging.NewSettingsConsumer(rabbitConn, settingsService, cfg.SettingsExchange, appLogger)
	if err := settingsConsumer.Start(); err != nil {
		appLogger.Fatal("Не удалось запустить consumer настроек", zap.Error(err))
	}

	aiClient, err := ai.New(ai.Config{
		APIKey:    cfg.AIAPIKey,
		BaseURL:   cfg.AIBaseURL,
		ModelName: cfg.AIModel,
		Timeout:   cfg.AITimeout,
	})
	if err != nil {
		appLogger.Fatal("Не удалось создать AI клиента", zap.Error(err))
	}

	paymentClient := payments.NewClient(cfg.PaymentAPIBaseURL, cfg.PaymentAPIKey, appLogger)

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, appLogger)
	if err != nil {
		appLogger.Fatal("Не удалось создать JWT verifier", zap.Error(err))
	}

	// Сервисы. CreditService одновременно служит леджером
	// для наград, платежей и генерации личных глав.
	creditService := service.NewCreditService(db.Pool, txManager, userRepo, creditRepo, appLogger)
	rewardService := service.NewRewardService(db.Pool, txManager, userRepo, creditRepo, storyRepo, readingRepo, creditService, readerCache, appLogger)
	authService := service.NewAuthService(db.Pool, txManager, userRepo, rewardService, verifier, service.AuthConfig{
		JWTSecret:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}, appLogger)
	storyService := service.NewStoryService(db.Pool, txManager, storyRepo, chapterRepo, promptRepo, settingsService, appLogger)
	votingService := service.NewVotingService(db.Pool, txManager, storyRepo, promptRepo, voteRepo, chapterRepo, taskPublisher, appLogger)
	readingService := service.NewReadingService(db.Pool, chapterRepo, readingRepo, rewardService, readerCache, appLogger)
	personalService := service.NewPersonalStoryService(db.Pool, txManager, storyRepo, chapterRepo, creditService, aiClient, settingsService, appLogger)
	paymentService := service.NewPaymentService(db.Pool, txManager, creditRepo, purchaseRepo, creditService, paymentClient, service.PaymentConfig{
		WebhookSecret: cfg.PaymentWebhookSecret,
		SuccessURL:    cfg.PaymentSuccessURL,
		CancelURL:     cfg.PaymentCancelURL,
	}, appLogger)

	h := handler.NewHandler(
		authService,
		storyService,
		votingService,
		readingService,
		personalService,
		creditService,
		rewardService,
		paymentService,
		verifier,
		appLogger,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.EchoZapLogger(appLogger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.RegisterRoutes(e)

	go func() {
		appLogger.Info("Запуск HTTP сервера", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Получен сигнал завершения, останавливаем сервер...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		appLogger.Error("Ошибка при остановке сервера", zap.Error(err))
	}

	appLogger.Info("Сервер остановлен")
}

// connectRabbitMQ подключается к RabbitMQ с несколькими попытками,
// чтобы пережить старт брокера в docker-compose.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp091.Connection, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	var conn *amqp091.Connection
	var err error
	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ, повтор...",
			zap.Int("attempt", i), zap.Int("maxRetries", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}
	return nil, err
}
