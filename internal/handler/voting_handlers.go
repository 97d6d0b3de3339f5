package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type submitPromptRequest struct {
	Text string `json:"text"`
}

func (h *Handler) submitPrompt(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req submitPromptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}

	prompt, err := h.votingService.SubmitPrompt(c.Request().Context(), storyID, userID, req.Text)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, prompt)
}

func (h *Handler) listPrompts(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	chapterNumber, err := strconv.Atoi(c.QueryParam("chapter"))
	if err != nil || chapterNumber < 1 {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter number"})
	}

	prompts, err := h.votingService.ListPrompts(c.Request().Context(), storyID, chapterNumber, h.optionalUserID(c))
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, prompts)
}

func (h *Handler) castVote(c echo.Context) error {
	promptID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.votingService.CastVote(c.Request().Context(), promptID, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) selectWinner(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	chapterNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil || chapterNumber < 1 {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter number"})
	}

	selection, err := h.votingService.SelectWinner(c.Request().Context(), storyID, chapterNumber)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, selection)
}
