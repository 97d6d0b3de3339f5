package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Заголовок, в котором провайдер передает подпись вебхука.
const webhookSignatureHeader = "X-Payment-Signature"

// Вебхуки провайдера небольшие, но тело все равно ограничиваем.
const maxWebhookBodySize = 1 << 20

func (h *Handler) listPackages(c echo.Context) error {
	packages, err := h.paymentService.ListPackages(c.Request().Context())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, packages)
}

type checkoutRequest struct {
	PackageID uuid.UUID `json:"package_id"`
}

func (h *Handler) createCheckout(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil || req.PackageID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}

	session, err := h.paymentService.CreateCheckout(c.Request().Context(), userID, req.PackageID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) listPurchases(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	purchases, err := h.paymentService.ListPurchases(c.Request().Context(), userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, purchases)
}

// paymentWebhook принимает событие платежного провайдера.
// Подпись считается от сырого тела запроса, поэтому читаем его до парсинга.
func (h *Handler) paymentWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodySize))
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Failed to read request body"})
	}

	signature := c.Request().Header.Get(webhookSignatureHeader)

	if err := h.paymentService.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.NoContent(http.StatusOK)
}
