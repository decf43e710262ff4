package handler

import (
	"errors"
	"net/http"

	"rotkit/api/middleware"
	"rotkit/internal/dto"
	"rotkit/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	Service *service.ProfileService
	Logger  logrus.FieldLogger
}

func NewProfileHandler(svc *service.ProfileService, logger logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{Service: svc, Logger: logger}
}

func (h *ProfileHandler) UploadProfileImage(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("no file provided"))
	}
	if fileHeader.Size > service.MaxProfileImageBytes {
		return writeError(c, http.StatusBadRequest, errors.New("file size must be less than 2MB"))
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if len(contentType) < 6 || contentType[:6] != "image/" {
		return writeError(c, http.StatusBadRequest, errors.New("only image files are allowed"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("unreadable upload"))
	}
	defer file.Close()

	result, err := h.Service.UpdateProfileImage(c.Request().Context(), *identity, service.ProfileImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        file,
		Meta:        requestMeta(c),
	})
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileImageResponse{
		Success:  true,
		Message:  "Profile image updated",
		ImageURL: result.URL,
		URL:      result.URL,
		Path:     result.Path,
		Bucket:   result.Bucket,
	})
}
