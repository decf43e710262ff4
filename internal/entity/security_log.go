package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	OTPSent             SecurityAction = "otp_sent"
	OTPFailed           SecurityAction = "otp_failed"
	LoginSuccess        SecurityAction = "login_success"
	LoginFailed         SecurityAction = "login_failed"
	Logout              SecurityAction = "logout"
	Reset               SecurityAction = "password_reset"
	SignupCompleted     SecurityAction = "signup_completed"
	ProfileImageUpdated SecurityAction = "profile_image_updated"
)

type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	PrincipalID   *uuid.UUID `gorm:"type:uuid;index"`
	PrincipalRole *UserRole  `gorm:"type:varchar(20)"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(40);not null;index"`

	Metadata datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
}
