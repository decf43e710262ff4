package middleware

import (
	"net/http"
	"strings"

	"rotkit/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	AdminTokenCookie = "admin-token"
	UserTokenCookie  = "user-token"
)

type TokenVerifier interface {
	VerifyToken(token string) (*service.SessionIdentity, error)
}

type AuthMiddleware struct {
	Tokens TokenVerifier
}

// RequireAuth accepts a bearer header first, then the admin cookie, then the
// customer cookie.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := m.authenticate(c)
		if identity == nil {
			return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
		}
		SetAuthContext(c, identity)
		return next(c)
	}
}

// OptionalAuth attaches the session when one is presented and valid.
func (m AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if identity := m.authenticate(c); identity != nil {
			SetAuthContext(c, identity)
		}
		return next(c)
	}
}

func (m AuthMiddleware) authenticate(c echo.Context) *service.SessionIdentity {
	if m.Tokens == nil {
		return nil
	}
	for _, token := range candidateTokens(c) {
		identity, err := m.Tokens.VerifyToken(token)
		if err == nil {
			return identity
		}
	}
	return nil
}

func candidateTokens(c echo.Context) []string {
	var tokens []string
	if token := extractBearerToken(c.Request()); token != "" {
		tokens = append(tokens, token)
	}
	for _, name := range []string{AdminTokenCookie, UserTokenCookie} {
		cookie, err := c.Cookie(name)
		if err == nil && cookie.Value != "" {
			tokens = append(tokens, cookie.Value)
		}
	}
	return tokens
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
