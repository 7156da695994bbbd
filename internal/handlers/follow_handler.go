package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
)

// FollowHandler handles follow and unfollow requests
type FollowHandler struct {
	actions *actions.Actions
}

func NewFollowHandler(a *actions.Actions) *FollowHandler {
	return &FollowHandler{actions: a}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
}

func (h *FollowHandler) Follow(c echo.Context) error {
	res, err := h.actions.Follow(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"isFollowing": res.IsFollowing, "followersCount": res.FollowersCount})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	res, err := h.actions.Unfollow(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"isFollowing": res.IsFollowing, "followersCount": res.FollowersCount})
}
