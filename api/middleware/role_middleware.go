package middleware

import (
	"net/http"
	"slices"

	"rotkit/internal/entity"

	"github.com/labstack/echo/v4"
)

// RequireRole must run after RequireAuth. A missing session is 401, a session
// with any other role is 403.
func RequireRole(roles ...entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
			}
			if !slices.Contains(roles, identity.Role) {
				return c.JSON(http.StatusForbidden, map[string]any{"success": false, "message": "forbidden"})
			}
			return next(c)
		}
	}
}
