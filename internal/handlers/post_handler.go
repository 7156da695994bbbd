package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	actions *actions.Actions
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(a *actions.Actions) *PostHandler {
	return &PostHandler{actions: a}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:username/posts", h.ListUserPosts)
}

// CreatePost accepts JSON, or a multipart form whose "files" parts are
// uploaded and appended to the media list.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	files, err := formFiles(c, "files")
	if err != nil {
		return err
	}
	post, err := h.actions.CreatePost(c.Request().Context(), middleware.UserID(c), req, files)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"post": post})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.actions.GetPost(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"post": post})
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.actions.DeletePost(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Post deleted"})
}

func (h *PostHandler) ListUserPosts(c echo.Context) error {
	posts, page, err := h.actions.ListUserPosts(c.Request().Context(), middleware.UserID(c), c.Param("username"), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"posts": posts}, page))
}
