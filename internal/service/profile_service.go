package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"rotkit/internal/entity"
	"rotkit/internal/repository"
	"rotkit/internal/utils"

	"github.com/sirupsen/logrus"
)

const MaxProfileImageBytes = 2 << 20

type ImageStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) (string, error)
	Bucket() string
}

type ProfileImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Meta        RequestMeta
}

type ProfileImageResult struct {
	URL    string
	Path   string
	Bucket string
}

type ProfileService struct {
	users        repository.UserRepository
	admins       repository.AdminRepository
	securityLogs repository.SecurityLogRepository
	store        ImageStore
	clock        Clock
	logger       logrus.FieldLogger
}

func NewProfileService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	securityLogs repository.SecurityLogRepository,
	store ImageStore,
	clock Clock,
	logger logrus.FieldLogger,
) *ProfileService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProfileService{
		users:        users,
		admins:       admins,
		securityLogs: securityLogs,
		store:        store,
		clock:        clock,
		logger:       logger,
	}
}

// UpdateProfileImage stores the image and points the caller's profile at it.
// Admin sessions land under admin/, everyone else under users/.
func (s *ProfileService) UpdateProfileImage(ctx context.Context, identity SessionIdentity, upload ProfileImageUpload) (*ProfileImageResult, error) {
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}
	if upload.Body == nil || upload.Size <= 0 || upload.Size > MaxProfileImageBytes {
		return nil, ErrInvalidInput
	}
	ext, ok := imageExtension(upload.ContentType)
	if !ok {
		return nil, ErrInvalidInput
	}

	folder := "users"
	if identity.Role == entity.UserRoleAdmin {
		folder = "admin"
	}
	suffix, err := utils.GenerateRandomToken(6)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%d-%s%s", folder, s.clock.Now().UnixMilli(), suffix, ext)

	url, err := s.store.Put(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, identity, url); err != nil {
		s.logger.WithError(err).WithField("path", key).Warn("uploaded profile image left unattached")
		return nil, err
	}

	principal := Principal{ID: identity.SubjectID, Role: identity.Role}
	_ = recordSecurityEvent(ctx, s.securityLogs, &principal, upload.Meta, entity.ProfileImageUpdated, map[string]any{"path": key})
	return &ProfileImageResult{URL: url, Path: key, Bucket: s.store.Bucket()}, nil
}

func (s *ProfileService) attach(ctx context.Context, identity SessionIdentity, url string) error {
	if identity.Role == entity.UserRoleAdmin {
		admin, err := s.admins.FindByID(ctx, identity.SubjectID)
		if err != nil {
			return err
		}
		if admin != nil {
			return s.admins.UpdateProfileImage(ctx, admin.ID, url)
		}
	}
	user, err := s.users.FindByID(ctx, identity.SubjectID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.UpdateProfileImage(ctx, user.ID, url)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// imageExtension derives the stored object's extension from the declared
// media type; the client filename never reaches the key.
func imageExtension(contentType string) (string, bool) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(mediaType))]
	return ext, ok
}
