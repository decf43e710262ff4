package repository

import (
	"context"
	"errors"
	"time"

	"rotkit/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error)
	FindByAdminID(ctx context.Context, adminID string) (*entity.Admin, error)
	FindByEmail(ctx context.Context, email string) (*entity.Admin, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfileImage(ctx context.Context, id uuid.UUID, imageURL string) error
	Upsert(ctx context.Context, admin *entity.Admin) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *adminRepository) FindByAdminID(ctx context.Context, adminID string) (*entity.Admin, error) {
	return r.first(ctx, "admin_id = ?", adminID)
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *adminRepository) first(ctx context.Context, query string, arg any) (*entity.Admin, error) {
	var admin entity.Admin
	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&admin).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Admin{}).
		Where("id = ?", id).
		Update("last_login_at", at).
		Error
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Admin{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).
		Error
}

func (r *adminRepository) UpdateProfileImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Admin{}).
		Where("id = ?", id).
		Update("profile_image", imageURL).
		Error
}

// Upsert creates the admin or refreshes its credentials and profile, keyed on admin_id.
func (r *adminRepository) Upsert(ctx context.Context, admin *entity.Admin) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "admin_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "password_hash", "first_name", "last_name", "department", "is_active", "updated_at",
			}),
		}).
		Create(admin).Error
}
