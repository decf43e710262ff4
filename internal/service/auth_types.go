package service

import (
	"context"
	"time"

	"rotkit/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	OTPTTL            time.Duration
	ResendCooldown    time.Duration
	MaxOTPAttempts    int
	ChallengeTokenTTL time.Duration
}

type OTPEmailKind string

const (
	OTPEmailSignup              OTPEmailKind = "signup"
	OTPEmailCustomerLogin       OTPEmailKind = "customer_login"
	OTPEmailAdminLogin          OTPEmailKind = "admin_login"
	OTPEmailForgotPassword      OTPEmailKind = "forgot_password"
	OTPEmailAdminForgotPassword OTPEmailKind = "admin_forgot_password"
)

type OTPEmail struct {
	Kind        OTPEmailKind
	To          string
	Code        string
	DisplayName string
	TTL         time.Duration
}

type EmailSender interface {
	SendOTPEmail(ctx context.Context, email OTPEmail) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type TokenExtras struct {
	Email string
	Name  string
}

type SessionTokenIssuer interface {
	IssueToken(subjectID uuid.UUID, role entity.UserRole, extras TokenExtras) (string, time.Time, error)
	VerifyToken(token string) (*SessionIdentity, error)
}

type ChallengeTokenIssuer interface {
	IssueChallengeToken(subjectID uuid.UUID, audience Audience) (string, time.Duration, error)
	ParseChallengeToken(token string) (uuid.UUID, Audience, error)
}

type CodeGenerator interface {
	Generate() (string, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
