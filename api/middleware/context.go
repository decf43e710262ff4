package middleware

import (
	"rotkit/internal/service"

	"github.com/labstack/echo/v4"
)

const contextIdentityKey = "auth_identity"

func SetAuthContext(c echo.Context, identity *service.SessionIdentity) {
	c.Set(contextIdentityKey, identity)
}

func IdentityFromContext(c echo.Context) (*service.SessionIdentity, bool) {
	identity, ok := c.Get(contextIdentityKey).(*service.SessionIdentity)
	return identity, ok && identity != nil
}
