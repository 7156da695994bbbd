package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/models"
)

// CookieOptions controls the session cookie written on sign-in.
type CookieOptions struct {
	Name   string
	Secure bool
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	actions *actions.Actions
	cookie  CookieOptions
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(a *actions.Actions, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{actions: a, cookie: cookie}
}

// RegisterAuthRoutes registers the public sign-in routes and the protected
// logout route.
func (h *AuthHandler) RegisterAuthRoutes(public, protected *echo.Group) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/firebase-login", h.FirebaseLogin)
	protected.POST("/auth/logout", h.Logout)
}

func (h *AuthHandler) setCookie(c echo.Context, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) signedIn(c echo.Context, status int, res *actions.AuthResult) error {
	h.setCookie(c, res.Token, res.ExpiresAt)
	return success(c, status, echo.Map{
		"user":      res.User,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.actions.Register(c.Request().Context(), req, c.Request().UserAgent())
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.actions.Login(c.Request().Context(), req, c.Request().UserAgent())
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusOK, res)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" form:"idToken"`
}

// FirebaseLogin exchanges a Firebase ID token, sent in the body or as a bearer
// token, for a local session.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	idToken := strings.TrimSpace(req.IDToken)
	if idToken == "" {
		idToken = middleware.BearerToken(c)
	}
	res, err := h.actions.LoginWithFirebase(c.Request().Context(), idToken, c.Request().UserAgent())
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusOK, res)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.actions.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	h.setCookie(c, "", time.Unix(0, 0))
	return success(c, http.StatusOK, echo.Map{"message": "Logged out"})
}
