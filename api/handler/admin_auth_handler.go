package handler

import (
	"net/http"
	"strconv"

	"rotkit/internal/dto"
	"rotkit/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *AuthHandler) AdminVerifyCredentials(c echo.Context) error {
	var req dto.AdminCredentialsRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.AdminCredentialsInput{AdminID: req.AdminID, Password: req.Password, Meta: requestMeta(c)}
	challenge, err := h.Service.StartAdminLogin(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, challengeResponse("Credentials verified. OTP sent to your email address.", challenge))
}

func (h *AuthHandler) AdminVerifyOTP(c echo.Context) error {
	var req dto.ChallengeOTPRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.ChallengeOTPInput{ChallengeToken: req.ChallengeToken, Code: req.OTP, Meta: requestMeta(c)}
	result, err := h.Service.CompleteAdminLogin(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookies.setSessionCookie(c, result.Principal.Role, result.Token)
	return c.JSON(http.StatusOK, authResponse("Admin login successful", result))
}

func (h *AuthHandler) AdminForgotPassword(c echo.Context) error {
	return h.requestPasswordReset(c, service.AudienceAdmin)
}

func (h *AuthHandler) AdminResetPassword(c echo.Context) error {
	return h.resetPassword(c, service.AudienceAdmin)
}

func (h *AuthHandler) AdminSecurityLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	logs, err := h.Service.ListSecurityLogs(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.SecurityLogListResponse{Success: true, Logs: dto.SecurityLogResponsesFrom(logs)})
}
