package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"plotvote-server/internal/authutils"
	"plotvote-server/internal/models"
)

// Ключи контекста Echo, проставляемые после успешной аутентификации.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
)

// JWTAuthMiddleware создает middleware для проверки JWT access токена.
// Проверяет подпись и срок действия, кладет user_id и username в контекст Echo.
func JWTAuthMiddleware(verifier *authutils.JWTVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("JWTAuthMiddleware")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := verifier.VerifyToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug("Token verification failed", zap.Error(err))
				switch {
				case errors.Is(err, models.ErrTokenExpired):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				case errors.Is(err, models.ErrTokenMalformed):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is malformed")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid")
				}
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyUsername, claims.Username)

			return next(c)
		}
	}
}
