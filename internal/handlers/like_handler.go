package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
)

// LikeHandler handles liking and unliking posts
type LikeHandler struct {
	actions *actions.Actions
}

func NewLikeHandler(a *actions.Actions) *LikeHandler {
	return &LikeHandler{actions: a}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
}

func (h *LikeHandler) LikePost(c echo.Context) error {
	res, err := h.actions.LikePost(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"likesCount": res.LikesCount, "isLiked": res.IsLiked})
}

func (h *LikeHandler) UnlikePost(c echo.Context) error {
	res, err := h.actions.UnlikePost(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"likesCount": res.LikesCount, "isLiked": res.IsLiked})
}
