package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	actions *actions.Actions
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(a *actions.Actions) *UserHandler {
	return &UserHandler{actions: a}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.Me)
	g.PUT("/users/me", h.UpdateProfile)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:username", h.GetProfile)
	g.GET("/users/:username/followers", h.Followers)
	g.GET("/users/:username/following", h.Following)
}

func (h *UserHandler) Me(c echo.Context) error {
	profile, err := h.actions.Me(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": profile})
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.actions.GetProfile(c.Request().Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": profile})
}

// UpdateProfile accepts JSON or a multipart form with an optional "avatar" file.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	avatar, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	profile, err := h.actions.UpdateProfile(c.Request().Context(), middleware.UserID(c), req, avatar)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": profile})
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	users, err := h.actions.SearchUsers(c.Request().Context(), middleware.UserID(c), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) Followers(c echo.Context) error {
	users, err := h.actions.Followers(c.Request().Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) Following(c echo.Context) error {
	users, err := h.actions.Following(c.Request().Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}
