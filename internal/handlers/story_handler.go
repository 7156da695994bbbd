package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// StoryHandler handles story HTTP requests
type StoryHandler struct {
	actions *actions.Actions
}

func NewStoryHandler(a *actions.Actions) *StoryHandler {
	return &StoryHandler{actions: a}
}

func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.ActiveStories)
	g.POST("/stories/:id/view", h.ViewStory)
}

// CreateStory takes either a "media" URL or a "file" upload.
func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	file, err := formFile(c, "file")
	if err != nil {
		return err
	}
	story, err := h.actions.CreateStory(c.Request().Context(), middleware.UserID(c), req, file)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"story": story})
}

func (h *StoryHandler) ActiveStories(c echo.Context) error {
	groups, err := h.actions.ActiveStories(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"stories": groups})
}

func (h *StoryHandler) ViewStory(c echo.Context) error {
	if err := h.actions.ViewStory(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, nil)
}
