package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
)

// FeedHandler serves the home feed
type FeedHandler struct {
	actions *actions.Actions
}

func NewFeedHandler(a *actions.Actions) *FeedHandler {
	return &FeedHandler{actions: a}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns one page of the caller's feed. ?page= is 1-based.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	posts, page, err := h.actions.Feed(c.Request().Context(), middleware.UserID(c), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"posts": posts}, page))
}
