package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	actions *actions.Actions
}

func NewNotificationHandler(a *actions.Actions) *NotificationHandler {
	return &NotificationHandler{actions: a}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.List)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.GET("/notifications/announcements", h.Announcements)
	g.PUT("/notifications/read-all", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
}

func (h *NotificationHandler) List(c echo.Context) error {
	list, page, err := h.actions.Notifications(c.Request().Context(), middleware.UserID(c), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, withPage(echo.Map{"notifications": list}, page))
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	n, err := h.actions.UnreadNotificationCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": n})
}

func (h *NotificationHandler) Announcements(c echo.Context) error {
	list, err := h.actions.AdminAnnouncements(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"announcements": list})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.actions.MarkNotificationRead(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, nil)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.actions.MarkAllNotificationsRead(c.Request().Context(), middleware.UserID(c)); err != nil {
		return err
	}
	return success(c, http.StatusOK, nil)
}
