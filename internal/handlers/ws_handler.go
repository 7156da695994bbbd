package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
	"github.com/orbtao/connectify/backend/internal/realtime"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
	"github.com/orbtao/connectify/backend/pkg/logger"
)

// Client event names. "message" and "typing" share the relay names.
const (
	eventJoin  = "join"
	eventError = "error"
)

// WSHandler upgrades authenticated requests to the realtime relay.
type WSHandler struct {
	actions  *actions.Actions
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewWSHandler(a *actions.Actions, hub *realtime.Hub, log logger.Logger) *WSHandler {
	return &WSHandler{
		actions:  a,
		hub:      hub,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		log:      log.WithComponent("ws"),
	}
}

func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect joins the caller's own room. A "join" frame is acknowledged but
// never moves the connection to another room.
func (h *WSHandler) Connect(c echo.Context) error {
	userID := middleware.UserID(c)
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "user", userID, "error", err)
		return nil
	}

	ctx := context.WithoutCancel(c.Request().Context())
	h.hub.Serve(ctx, conn, userID, func(client *realtime.Client, ev realtime.Event) {
		h.dispatch(ctx, userID, client, ev)
	})
	return nil
}

func (h *WSHandler) dispatch(ctx context.Context, userID string, client *realtime.Client, ev realtime.Event) {
	switch ev.Type {
	case eventJoin:
		client.Send(eventJoin, echo.Map{"room": userID})
	case actions.EventMessage:
		var req models.SendMessageRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			client.Send(eventError, echo.Map{"error": "Invalid message payload"})
			return
		}
		msg, err := h.actions.SendMessage(ctx, userID, req)
		if err != nil {
			client.Send(eventError, echo.Map{"error": apperrors.GetMessage(err)})
			return
		}
		client.Send("message:sent", msg)
	case actions.EventTyping:
		var p actions.TypingPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		h.actions.RelayTyping(userID, p)
	}
}
