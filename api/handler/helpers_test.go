package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rotkit/internal/dto"
	"rotkit/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		extra  string
	}{
		{service.ErrInvalidInput, http.StatusBadRequest, ""},
		{&service.RateLimitedError{WaitSeconds: 42}, http.StatusTooManyRequests, "waitTime"},
		{&service.InvalidCodeError{AttemptsLeft: 3}, http.StatusUnauthorized, "attemptsLeft"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{service.ErrOTPExpired, http.StatusUnauthorized, ""},
		{service.ErrTooManyAttempts, http.StatusUnauthorized, ""},
		{service.ErrOTPNotFound, http.StatusUnauthorized, ""},
		{fmt.Errorf("lookup: %w", service.ErrUserNotFound), http.StatusNotFound, ""},
		{service.ErrEmailAlreadyRegistered, http.StatusConflict, ""},
		{service.ErrStorageNotConfigured, http.StatusServiceUnavailable, ""},
		{&service.DeliveryError{Provider: "resend", Err: errors.New("quota")}, http.StatusInternalServerError, ""},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
			require.NoError(t, writeServiceError(c, nil, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			if tc.extra != "" {
				assert.Contains(t, body, tc.extra)
			}
		})
	}
}

func TestWriteServiceErrorLogsUnknown(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), rec)

	require.NoError(t, writeServiceError(c, logger, errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestBindRejectsUnknownFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","admin":true}`))
	c := e.NewContext(req, httptest.NewRecorder())

	var target dto.ForgotPasswordRequest
	err := bind(c, validator.New(), &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request body")
}

func TestBindValidationMessages(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"jane@example.com","otp":"12a456","newPassword":"short"}`))
	c := e.NewContext(req, httptest.NewRecorder())

	var target dto.ResetPasswordRequest
	err := bind(c, validator.New(), &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "otp must contain digits only")
	assert.Contains(t, err.Error(), "newPassword must be at least 8 characters")
}
