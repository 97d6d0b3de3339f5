package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
	"plotvote-server/internal/service"
)

type createStoryRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Genre         string `json:"genre"`
	Language      string `json:"language"`
	Characters    string `json:"characters"`
	Outline       string `json:"outline"`
	WorldBuilding string `json:"world_building"`
	Themes        string `json:"themes"`
	IsPersonal    bool   `json:"is_personal"`
}

func (h *Handler) createStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req createStoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}

	story, err := h.storyService.CreateStory(c.Request().Context(), service.CreateStoryParams{
		AuthorID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Genre:         req.Genre,
		Language:      req.Language,
		Characters:    req.Characters,
		Outline:       req.Outline,
		WorldBuilding: req.WorldBuilding,
		Themes:        req.Themes,
		IsPersonal:    req.IsPersonal,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, story)
}

func (h *Handler) listStories(c echo.Context) error {
	filter := interfaces.StoryListFilter{}

	if statusStr := c.QueryParam("status"); statusStr != "" {
		status := models.StoryStatus(statusStr)
		filter.Status = &status
	}
	if genre := c.QueryParam("genre"); genre != "" {
		filter.Genre = &genre
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	stories, err := h.storyService.ListStories(c.Request().Context(), filter)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, stories)
}

func (h *Handler) listMyStories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	stories, err := h.storyService.ListByAuthor(c.Request().Context(), userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, stories)
}

func (h *Handler) getStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	story, err := h.storyService.GetStory(c.Request().Context(), storyID, h.optionalUserID(c))
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, story)
}

func (h *Handler) toggleUpvote(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.storyService.ToggleUpvote(c.Request().Context(), storyID, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) completeStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.storyService.CompleteStory(c.Request().Context(), storyID, userID); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) pauseStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.storyService.PauseStory(c.Request().Context(), storyID, userID); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) resumeStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.storyService.ResumeStory(c.Request().Context(), storyID, userID); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) subscribe(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.storyService.Subscribe(c.Request().Context(), storyID, userID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) unsubscribe(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.storyService.Unsubscribe(c.Request().Context(), storyID, userID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type shareRequest struct {
	Platform string `json:"platform"`
}

type shareResponse struct {
	CreditsAwarded int `json:"credits_awarded"`
}

func (h *Handler) shareStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req shareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}

	awarded, err := h.rewardService.ProcessSocialShare(c.Request().Context(), userID, storyID, req.Platform)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, shareResponse{CreditsAwarded: awarded})
}
