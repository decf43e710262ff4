package repository

import (
	"errors"

	"rotkit/internal/entity"

	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("duplicate record")

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Admin{},
		&entity.SecurityLog{},
	)
}
