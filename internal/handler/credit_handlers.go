package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type balanceResponse struct {
	Credits int `json:"credits"`
}

func (h *Handler) getBalance(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	balance, err := h.creditService.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, balanceResponse{Credits: balance})
}

func (h *Handler) listTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	transactions, err := h.creditService.ListTransactions(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, transactions)
}
