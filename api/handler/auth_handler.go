package handler

import (
	"errors"
	"net/http"

	"rotkit/api/middleware"
	"rotkit/internal/dto"
	"rotkit/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
	Cookies  CookieSettings
	Logger   logrus.FieldLogger
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		Service:  svc,
		Validate: validate,
		Cookies:  DefaultCookieSettings(),
		Logger:   logger,
	}
}

func (h *AuthHandler) SendSignupOTP(c echo.Context) error {
	var req dto.SendOTPRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.SignupOTPInput{Email: req.Email, Name: req.Name, Meta: requestMeta(c)}
	if err := h.Service.RequestSignupOTP(c.Request().Context(), input); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "OTP sent successfully to your email address",
	})
}

func (h *AuthHandler) VerifySignupOTP(c echo.Context) error {
	var req dto.CompleteSignupRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.CompleteSignupInput{
		Email:    req.Email,
		Code:     req.OTP,
		Name:     req.Name,
		Password: req.Password,
		Meta:     requestMeta(c),
	}
	result, err := h.Service.CompleteSignup(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookies.setSessionCookie(c, result.Principal.Role, result.Token)
	return c.JSON(http.StatusCreated, authResponse("Email verified, account created", result))
}

func (h *AuthHandler) OTPStatus(c echo.Context) error {
	email := c.QueryParam("email")
	if h.Validate != nil {
		if err := h.Validate.Var(email, "required,email"); err != nil {
			return writeError(c, http.StatusBadRequest, errors.New("please enter a valid email address"))
		}
	}
	status, err := h.Service.CanResendOTP(c.Request().Context(), email)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.ResendStatusResponse{
		Success:   true,
		CanResend: status.CanResend,
		WaitTime:  status.WaitSeconds,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.CustomerLoginRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.CustomerCredentialsInput{Email: req.Email, Password: req.Password, Meta: requestMeta(c)}
	challenge, err := h.Service.StartCustomerLogin(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, challengeResponse("Credentials verified. OTP sent to your email address.", challenge))
}

func (h *AuthHandler) VerifyLoginOTP(c echo.Context) error {
	var req dto.ChallengeOTPRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.ChallengeOTPInput{ChallengeToken: req.ChallengeToken, Code: req.OTP, Meta: requestMeta(c)}
	result, err := h.Service.CompleteCustomerLogin(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookies.setSessionCookie(c, result.Principal.Role, result.Token)
	return c.JSON(http.StatusOK, authResponse("Login successful", result))
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	return h.requestPasswordReset(c, service.AudienceCustomer)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	return h.resetPassword(c, service.AudienceCustomer)
}

func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	principal, err := h.Service.Me(c.Request().Context(), *identity)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.MeResponse{Success: true, User: dto.PrincipalResponseFrom(*principal)})
}

// Logout only clears the browser copy; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, _ := middleware.IdentityFromContext(c)
	h.Service.Logout(c.Request().Context(), identity, requestMeta(c))
	h.Cookies.clearSessionCookies(c)
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out"})
}

func (h *AuthHandler) requestPasswordReset(c echo.Context, audience service.Audience) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.PasswordResetOTPInput{Audience: audience, Email: req.Email, Meta: requestMeta(c)}
	if err := h.Service.RequestPasswordResetOTP(c.Request().Context(), input); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "OTP sent to your email address",
	})
}

func (h *AuthHandler) resetPassword(c echo.Context, audience service.Audience) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.PasswordResetInput{
		Audience:    audience,
		Email:       req.Email,
		Code:        req.OTP,
		NewPassword: req.NewPassword,
		Meta:        requestMeta(c),
	}
	result, err := h.Service.ResetPasswordWithOTP(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookies.setSessionCookie(c, result.Principal.Role, result.Token)
	return c.JSON(http.StatusOK, authResponse("Password updated, you are now signed in", result))
}

func challengeResponse(message string, challenge *service.ChallengeResult) dto.ChallengeResponse {
	return dto.ChallengeResponse{
		Success:            true,
		Message:            message,
		Email:              challenge.MaskedEmail,
		ChallengeToken:     challenge.ChallengeToken,
		ChallengeExpiresIn: challenge.ChallengeExpiresIn,
	}
}
