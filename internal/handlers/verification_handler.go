package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// VerificationHandler handles verification badge requests
type VerificationHandler struct {
	actions *actions.Actions
}

func NewVerificationHandler(a *actions.Actions) *VerificationHandler {
	return &VerificationHandler{actions: a}
}

func (h *VerificationHandler) RegisterVerificationRoutes(g *echo.Group) {
	g.POST("/verification", h.Submit)
	g.GET("/verification/me", h.Mine)
}

// Submit expects a multipart form: repeated "links", "about", "category" and
// the "document" file.
func (h *VerificationHandler) Submit(c echo.Context) error {
	var req models.SubmitVerificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	doc, err := formFile(c, "document")
	if err != nil {
		return err
	}
	vr, err := h.actions.SubmitVerification(c.Request().Context(), middleware.UserID(c), req, doc)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"request": vr})
}

func (h *VerificationHandler) Mine(c echo.Context) error {
	vr, err := h.actions.MyVerification(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"request": vr})
}
