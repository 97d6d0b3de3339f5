package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) listChapters(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	chapters, err := h.readingService.ListChapters(c.Request().Context(), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, chapters)
}

func (h *Handler) getChapter(c echo.Context) error {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	chapter, err := h.readingService.GetChapter(c.Request().Context(), chapterID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, chapter)
}

type progressRequest struct {
	ReadPercentage   int `json:"read_percentage"`
	TimeSpentSeconds int `json:"time_spent_seconds"`
}

func (h *Handler) recordProgress(c echo.Context) error {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}

	view, err := h.readingService.RecordProgress(c.Request().Context(), chapterID, userID, req.ReadPercentage, req.TimeSpentSeconds)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *Handler) getProgress(c echo.Context) error {
	chapterID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	view, err := h.readingService.GetProgress(c.Request().Context(), chapterID, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if view == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, view)
}

type generateChapterRequest struct {
	Direction string `json:"direction"`
}

func (h *Handler) generatePersonalChapter(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req generateChapterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}

	chapter, err := h.personalService.GenerateChapter(c.Request().Context(), storyID, userID, req.Direction)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, chapter)
}

func (h *Handler) publishPersonalStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	story, err := h.personalService.PublishPersonalStory(c.Request().Context(), storyID, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, story)
}
