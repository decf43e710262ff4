package service

import (
	"time"

	"rotkit/internal/entity"

	"github.com/google/uuid"
)

// Audience selects which principal table a flow authenticates against.
type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceAdmin    Audience = "admin"
)

func (a Audience) Valid() bool {
	return a == AudienceCustomer || a == AudienceAdmin
}

type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}

type SignupOTPInput struct {
	Email string
	Name  string
	Meta  RequestMeta
}

type CompleteSignupInput struct {
	Email    string
	Code     string
	Name     string
	Password string
	Meta     RequestMeta
}

type CustomerCredentialsInput struct {
	Email    string
	Password string
	Meta     RequestMeta
}

type AdminCredentialsInput struct {
	AdminID  string
	Password string
	Meta     RequestMeta
}

type ChallengeOTPInput struct {
	ChallengeToken string
	Code           string
	Meta           RequestMeta
}

type PasswordResetOTPInput struct {
	Audience Audience
	Email    string
	Meta     RequestMeta
}

type PasswordResetInput struct {
	Audience    Audience
	Email       string
	Code        string
	NewPassword string
	Meta        RequestMeta
}

type Principal struct {
	ID           uuid.UUID
	Role         entity.UserRole
	Email        string
	Name         string
	FirstName    string
	LastName     string
	AdminID      string
	ProfileImage *string
	LastLoginAt  *time.Time
}

// ChallengeResult is returned once credentials pass and an OTP is on its way.
type ChallengeResult struct {
	MaskedEmail        string
	ChallengeToken     string
	ChallengeExpiresIn int64
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

type SessionIdentity struct {
	SubjectID uuid.UUID
	Role      entity.UserRole
	Email     string
	Name      string
	ExpiresAt time.Time
}

type ResendStatus struct {
	CanResend   bool
	WaitSeconds int
}

type VerifyResult struct {
	Success      bool
	AttemptsLeft int
}

func principalFromUser(user *entity.User) Principal {
	return Principal{
		ID:           user.ID,
		Role:         user.Role,
		Email:        user.Email,
		Name:         user.Name,
		ProfileImage: user.ProfileImage,
		LastLoginAt:  user.LastLoginAt,
	}
}

func principalFromAdmin(admin *entity.Admin) Principal {
	return Principal{
		ID:           admin.ID,
		Role:         entity.UserRoleAdmin,
		Email:        admin.Email,
		Name:         admin.FullName(),
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		AdminID:      admin.AdminID,
		ProfileImage: admin.ProfileImage,
		LastLoginAt:  admin.LastLoginAt,
	}
}
