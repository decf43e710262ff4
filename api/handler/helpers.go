package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rotkit/api/middleware"
	"rotkit/internal/dto"
	"rotkit/internal/entity"
	"rotkit/internal/service"
	"rotkit/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// CookieSettings controls the session cookies handed to browsers.
type CookieSettings struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func DefaultCookieSettings() CookieSettings {
	return CookieSettings{Secure: true, SameSite: http.SameSiteStrictMode}
}

func sessionCookieName(role entity.UserRole) string {
	if role == entity.UserRoleAdmin {
		return middleware.AdminTokenCookie
	}
	return middleware.UserTokenCookie
}

func (s CookieSettings) setSessionCookie(c echo.Context, role entity.UserRole, token string) {
	maxAge := int(utils.SessionTokenTTL.Seconds())
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName(role),
		Value:    token,
		Path:     "/",
		Domain:   s.Domain,
		MaxAge:   maxAge,
		Expires:  time.Now().Add(utils.SessionTokenTTL),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.SameSite,
	})
}

func (s CookieSettings) clearSessionCookies(c echo.Context) {
	for _, name := range []string{middleware.AdminTokenCookie, middleware.UserTokenCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   s.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.Secure,
			SameSite: s.SameSite,
		})
	}
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// bind decodes and validates a request body in one step.
func bind(c echo.Context, validate *validator.Validate, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return err
	}
	if validate == nil {
		return nil
	}
	if err := validate.Struct(target); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := jsonFieldName(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "email":
			messages = append(messages, "please enter a valid email address")
		case "len":
			messages = append(messages, fmt.Sprintf("%s must be %s characters", field, fieldErr.Param()))
		case "numeric":
			messages = append(messages, field+" must contain digits only")
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param()))
		default:
			messages = append(messages, field+" is invalid")
		}
	}
	return strings.Join(messages, "; ")
}

func jsonFieldName(field string) string {
	switch field {
	case "OTP":
		return "otp"
	case "AdminID":
		return "adminId"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]any{"success": false, "message": err.Error()})
}

func writeServiceError(c echo.Context, logger logrus.FieldLogger, err error) error {
	body := map[string]any{"success": false, "message": err.Error()}
	status := http.StatusInternalServerError

	var rateLimited *service.RateLimitedError
	var invalidCode *service.InvalidCodeError
	switch {
	case errors.As(err, &rateLimited):
		status = http.StatusTooManyRequests
		body["waitTime"] = rateLimited.WaitSeconds
	case errors.As(err, &invalidCode):
		status = http.StatusUnauthorized
		body["attemptsLeft"] = invalidCode.AttemptsLeft
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrOTPNotFound),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrTooManyAttempts):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrStorageNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrDeliveryFailed):
		body["message"] = service.ErrDeliveryFailed.Error()
	default:
		if logger != nil {
			logger.WithError(err).WithField("uri", c.Request().RequestURI).Error("unhandled service error")
		}
		body["message"] = "internal server error"
	}
	return c.JSON(status, body)
}

func requestMeta(c echo.Context) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: stringPtr(c.RealIP()),
		UserAgent: stringPtr(c.Request().UserAgent()),
	}
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func authResponse(message string, result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Success:   true,
		Message:   message,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.PrincipalResponseFrom(result.Principal),
	}
}
