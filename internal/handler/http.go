package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"plotvote-server/internal/authutils"
	"plotvote-server/internal/middleware"
	"plotvote-server/internal/models"
	"plotvote-server/internal/service"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// Handler обрабатывает HTTP запросы платформы.
type Handler struct {
	authService     service.AuthService
	storyService    service.StoryService
	votingService   service.VotingService
	readingService  service.ReadingService
	personalService service.PersonalStoryService
	creditService   service.CreditService
	rewardService   service.RewardService
	paymentService  service.PaymentService
	verifier        *authutils.JWTVerifier
	logger          *zap.Logger
}

// NewHandler создает новый Handler.
func NewHandler(
	authService service.AuthService,
	storyService service.StoryService,
	votingService service.VotingService,
	readingService service.ReadingService,
	personalService service.PersonalStoryService,
	creditService service.CreditService,
	rewardService service.RewardService,
	paymentService service.PaymentService,
	verifier *authutils.JWTVerifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		authService:     authService,
		storyService:    storyService,
		votingService:   votingService,
		readingService:  readingService,
		personalService: personalService,
		creditService:   creditService,
		rewardService:   rewardService,
		paymentService:  paymentService,
		verifier:        verifier,
		logger:          logger.Named("Handler"),
	}
}

// RegisterRoutes регистрирует маршруты платформы.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authMiddleware := middleware.JWTAuthMiddleware(h.verifier, h.logger)

	// --- Аутентификация ---
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refresh)
		authGroup.GET("/me", h.me, authMiddleware)
	}

	// --- Истории ---
	storiesGroup := e.Group("/stories")
	{
		storiesGroup.GET("", h.listStories)
		storiesGroup.POST("", h.createStory, authMiddleware)
		storiesGroup.GET("/my", h.listMyStories, authMiddleware)
		storiesGroup.GET("/:id", h.getStory)
		storiesGroup.POST("/:id/upvote", h.toggleUpvote, authMiddleware)
		storiesGroup.POST("/:id/pause", h.pauseStory, authMiddleware)
		storiesGroup.POST("/:id/resume", h.resumeStory, authMiddleware)
		storiesGroup.POST("/:id/complete", h.completeStory, authMiddleware)
		storiesGroup.POST("/:id/subscribe", h.subscribe, authMiddleware)
		storiesGroup.DELETE("/:id/subscribe", h.unsubscribe, authMiddleware)
		storiesGroup.POST("/:id/share", h.shareStory, authMiddleware)

		// Промпты и главы истории
		storiesGroup.POST("/:id/prompts", h.submitPrompt, authMiddleware)
		storiesGroup.GET("/:id/prompts", h.listPrompts)
		storiesGroup.POST("/:id/chapters/:number/select-winner", h.selectWinner, authMiddleware)
		storiesGroup.GET("/:id/chapters", h.listChapters)

		// Личные истории: синхронная генерация глав и публикация
		storiesGroup.POST("/:id/generate", h.generatePersonalChapter, authMiddleware)
		storiesGroup.POST("/:id/publish", h.publishPersonalStory, authMiddleware)
	}

	// --- Голосование ---
	e.POST("/prompts/:id/vote", h.castVote, authMiddleware)

	// --- Главы и прогресс чтения ---
	chaptersGroup := e.Group("/chapters")
	{
		chaptersGroup.GET("/:id", h.getChapter)
		chaptersGroup.POST("/:id/progress", h.recordProgress, authMiddleware)
		chaptersGroup.GET("/:id/progress", h.getProgress, authMiddleware)
	}

	// --- Кредиты ---
	creditsGroup := e.Group("/credits", authMiddleware)
	{
		creditsGroup.GET("/balance", h.getBalance)
		creditsGroup.GET("/transactions", h.listTransactions)
	}

	// --- Платежи ---
	paymentsGroup := e.Group("/payments")
	{
		paymentsGroup.GET("/packages", h.listPackages)
		paymentsGroup.POST("/checkout", h.createCheckout, authMiddleware)
		paymentsGroup.GET("/purchases", h.listPurchases, authMiddleware)
		// Вебхук провайдера аутентифицируется подписью, не JWT
		paymentsGroup.POST("/webhook", h.paymentWebhook)
	}
}

// --- Вспомогательные функции --- //

// getUserIDFromContext извлекает userID, проставленный auth middleware.
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	val := c.Get(middleware.ContextKeyUserID)
	userID, ok := val.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, models.ErrUnauthorized
	}
	return userID, nil
}

// optionalUserID возвращает userID зрителя, если запрос пришел с валидным
// токеном. Анонимный или невалидный токен — nil, без ошибки.
func (h *Handler) optionalUserID(c echo.Context) *uuid.UUID {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil
	}
	claims, err := h.verifier.VerifyToken(c.Request().Context(), parts[1])
	if err != nil {
		return nil
	}
	id := claims.UserID
	return &id
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// handleServiceError транслирует доменные ошибки в HTTP статусы.
func (h *Handler) handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, models.ErrForbidden), errors.Is(err, service.ErrPermissionDenied):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: "Access denied"}
	case errors.Is(err, models.ErrStoryNotFound),
		errors.Is(err, models.ErrPromptNotFound),
		errors.Is(err, models.ErrChapterNotFound),
		errors.Is(err, models.ErrPackageNotFound),
		errors.Is(err, models.ErrPurchaseNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Resource not found"}
	case errors.Is(err, models.ErrUserAlreadyExists), errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrPromptAlreadySubmitted),
		errors.Is(err, models.ErrAlreadyVoted),
		errors.Is(err, models.ErrChapterAlreadyExists):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrVotingClosed),
		errors.Is(err, models.ErrVotingStillOpen),
		errors.Is(err, models.ErrStoryNotActive):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrInsufficientCredits):
		statusCode = http.StatusPaymentRequired
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrInvalidSignature):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: "Invalid signature"}
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: "Invalid request"}
	default:
		h.logger.Error("Unhandled service error",
			zap.String("path", c.Request().URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}

	return c.JSON(statusCode, apiErr)
}
