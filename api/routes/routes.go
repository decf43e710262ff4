package routes

import (
	"net/http"

	"rotkit/api/handler"
	"rotkit/api/middleware"
	"rotkit/internal/entity"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Profile        *handler.ProfileHandler
	AuthMiddleware middleware.AuthMiddleware
	APIRate        *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	authMiddleware middleware.AuthMiddleware,
	ratePerMinute int,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Profile:        profileHandler,
		AuthMiddleware: authMiddleware,
		APIRate:        middleware.NewPerMinuteLimiter(ratePerMinute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})

	api := e.Group("/api", r.APIRate.Middleware())

	auth := api.Group("/auth")
	auth.POST("/send-otp", r.Auth.SendSignupOTP)
	auth.POST("/verify-otp", r.Auth.VerifySignupOTP)
	auth.GET("/otp/status", r.Auth.OTPStatus)
	auth.POST("/login", r.Auth.Login)
	auth.POST("/login/verify", r.Auth.VerifyLoginOTP)
	auth.POST("/forgot-password", r.Auth.ForgotPassword)
	auth.POST("/forgot-password/verify", r.Auth.ResetPassword)
	auth.POST("/admin/verify-credentials", r.Auth.AdminVerifyCredentials)
	auth.POST("/admin/verify-otp", r.Auth.AdminVerifyOTP)
	auth.POST("/admin/forgot-password", r.Auth.AdminForgotPassword)
	auth.POST("/admin/forgot-password/verify", r.Auth.AdminResetPassword)
	auth.GET("/me", r.Auth.Me, r.AuthMiddleware.RequireAuth)
	auth.POST("/logout", r.Auth.Logout, r.AuthMiddleware.OptionalAuth)

	if r.Profile != nil {
		api.POST("/upload/profile", r.Profile.UploadProfileImage, r.AuthMiddleware.RequireAuth)
	}

	api.GET("/admin/security-logs", r.Auth.AdminSecurityLogs,
		r.AuthMiddleware.RequireAuth, middleware.RequireRole(entity.UserRoleAdmin))
}
