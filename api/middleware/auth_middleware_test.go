package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rotkit/internal/entity"
	"rotkit/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*service.SessionIdentity

func (s stubVerifier) VerifyToken(token string) (*service.SessionIdentity, error) {
	if identity, ok := s[token]; ok {
		return identity, nil
	}
	return nil, errors.New("invalid")
}

func TestRequireAuthSources(t *testing.T) {
	admin := &service.SessionIdentity{SubjectID: uuid.New(), Role: entity.UserRoleAdmin}
	customer := &service.SessionIdentity{SubjectID: uuid.New(), Role: entity.UserRoleCustomer}
	m := AuthMiddleware{Tokens: stubVerifier{"admin-jwt": admin, "user-jwt": customer}}
	e := echo.New()

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
		want   *service.SessionIdentity
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-jwt") }, http.StatusOK, customer},
		{"admin cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: "admin-jwt"}) }, http.StatusOK, admin},
		{"user cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: UserTokenCookie, Value: "user-jwt"}) }, http.StatusOK, customer},
		{"stale admin cookie falls through", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: "expired"})
			r.AddCookie(&http.Cookie{Name: UserTokenCookie, Value: "user-jwt"})
		}, http.StatusOK, customer},
		{"none", func(*http.Request) {}, http.StatusUnauthorized, nil},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic user-jwt") }, http.StatusUnauthorized, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen *service.SessionIdentity
			err := m.RequireAuth(func(c echo.Context) error {
				seen, _ = IdentityFromContext(c)
				return c.NoContent(http.StatusOK)
			})(c)
			require.NoError(t, err)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.want, seen)
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole(entity.UserRoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/security-logs", nil), rec)
	SetAuthContext(c, &service.SessionIdentity{Role: entity.UserRoleCustomer})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/security-logs", nil), rec)
	SetAuthContext(c, &service.SessionIdentity{Role: entity.UserRoleAdmin})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/security-logs", nil), rec)
	err := RequireRole(entity.UserRoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
