package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
)

// AdminHandler serves the moderation console. Every action checks the
// caller's role itself.
type AdminHandler struct {
	actions *actions.Actions
}

func NewAdminHandler(a *actions.Actions) *AdminHandler {
	return &AdminHandler{actions: a}
}

func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/stats", h.Stats)
	g.GET("/posts", h.ListPosts)
	g.PUT("/posts/:id/status", h.SetPostStatus)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/stories", h.ListStories)
	g.PUT("/stories/:id/status", h.SetStoryStatus)
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/status", h.SetUserStatus)
	g.GET("/verifications", h.ListVerifications)
	g.PUT("/verifications/:id", h.ReviewVerification)
	g.POST("/broadcast", h.Broadcast)
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.actions.Stats(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"stats": stats})
}

func (h *AdminHandler) ListPosts(c echo.Context) error {
	list, err := h.actions.AdminListPosts(c.Request().Context(), middleware.UserID(c), c.QueryParam("status"), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"posts": list.Posts, "total": list.Total}, list.Page))
}

func (h *AdminHandler) ListStories(c echo.Context) error {
	list, err := h.actions.AdminListStories(c.Request().Context(), middleware.UserID(c), c.QueryParam("status"), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"stories": list.Stories, "total": list.Total}, list.Page))
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	list, err := h.actions.AdminListUsers(c.Request().Context(), middleware.UserID(c), c.QueryParam("status"), c.QueryParam("q"), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"users": list.Users, "total": list.Total}, list.Page))
}

func (h *AdminHandler) status(c echo.Context) (string, error) {
	var req models.SetStatusRequest
	if err := bind(c, &req); err != nil {
		return "", err
	}
	return req.Status, nil
}

func (h *AdminHandler) SetPostStatus(c echo.Context) error {
	status, err := h.status(c)
	if err != nil {
		return err
	}
	if err := h.actions.SetPostStatus(c.Request().Context(), middleware.UserID(c), c.Param("id"), status); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"status": status})
}

func (h *AdminHandler) SetStoryStatus(c echo.Context) error {
	status, err := h.status(c)
	if err != nil {
		return err
	}
	if err := h.actions.SetStoryStatus(c.Request().Context(), middleware.UserID(c), c.Param("id"), status); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"status": status})
}

func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	status, err := h.status(c)
	if err != nil {
		return err
	}
	if err := h.actions.SetUserStatus(c.Request().Context(), middleware.UserID(c), c.Param("id"), status); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"status": status})
}

func (h *AdminHandler) DeletePost(c echo.Context) error {
	if err := h.actions.AdminDeletePost(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Post deleted"})
}

func (h *AdminHandler) ListVerifications(c echo.Context) error {
	list, page, err := h.actions.ListVerifications(c.Request().Context(), middleware.UserID(c), c.QueryParam("status"), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"requests": list}, page))
}

func (h *AdminHandler) ReviewVerification(c echo.Context) error {
	var req models.ReviewVerificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var approve bool
	switch req.Decision {
	case "approve":
		approve = true
	case "reject":
	default:
		return apperrors.Validation("Decision must be approve or reject")
	}
	vr, err := h.actions.ReviewVerification(c.Request().Context(), middleware.UserID(c), c.Param("id"), approve)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"request": vr})
}

func (h *AdminHandler) Broadcast(c echo.Context) error {
	var req models.BroadcastRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	n, err := h.actions.Broadcast(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"announcement": n})
}
