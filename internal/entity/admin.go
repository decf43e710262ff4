package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Admin is a back-office operator. AdminID is the login identifier typed on
// the admin sign-in form, distinct from the row's primary key.
type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID      string    `gorm:"column:admin_id;type:varchar(64);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FirstName    string    `gorm:"type:varchar(80)"`
	LastName     string    `gorm:"type:varchar(80)"`
	PhoneNumber  *string   `gorm:"type:varchar(32)"`
	Department   *string   `gorm:"type:varchar(80)"`
	ProfileImage *string   `gorm:"type:text"`

	LastLoginAt *time.Time
	IsActive    bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
