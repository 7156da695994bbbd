package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	actions *actions.Actions
}

func NewMessageHandler(a *actions.Actions) *MessageHandler {
	return &MessageHandler{actions: a}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.Send)
	g.GET("/messages/conversations", h.Conversations)
	g.GET("/messages/unread-count", h.UnreadCount)
	g.GET("/messages/:userId", h.Conversation)
}

func (h *MessageHandler) Send(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, err := h.actions.SendMessage(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"message": msg})
}

func (h *MessageHandler) Conversation(c echo.Context) error {
	messages, err := h.actions.Conversation(c.Request().Context(), middleware.UserID(c), c.Param("userId"), pageParam(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"messages": messages})
}

func (h *MessageHandler) Conversations(c echo.Context) error {
	list, err := h.actions.Conversations(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"conversations": list})
}

func (h *MessageHandler) UnreadCount(c echo.Context) error {
	n, err := h.actions.UnreadMessageCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": n})
}
