package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	actions *actions.Actions
}

func NewCommentHandler(a *actions.Actions) *CommentHandler {
	return &CommentHandler{actions: a}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.AddComment)
	g.GET("/posts/:id/comments", h.ListComments)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.actions.AddComment(c.Request().Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"comment": comment})
}

func (h *CommentHandler) ListComments(c echo.Context) error {
	comments, err := h.actions.ListComments(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"comments": comments})
}
