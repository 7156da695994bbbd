package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
)

const (
	userIDKey    = "userID"
	sessionIDKey = "sessionID"
)

// Authenticator resolves an access token to the session it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*actions.Principal, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AccessToken looks for the token in the Authorization header, then the
// session cookie, then the token query parameter used by websocket clients.
func AccessToken(c echo.Context, cookieName string) string {
	if token := BearerToken(c); token != "" {
		return token
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return c.QueryParam("token")
}

// JWTAuthMiddleware rejects requests without a live session and stores the
// caller on the context.
func JWTAuthMiddleware(auth Authenticator, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := AccessToken(c, cookieName)
			if token == "" {
				return apperrors.Unauthenticated("You must be logged in")
			}
			p, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(userIDKey, p.UserID)
			c.Set(sessionIDKey, p.SessionID)
			return next(c)
		}
	}
}

// UserID returns the authenticated caller, or "" outside JWTAuthMiddleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
