package testutil

import (
	"time"

	"rotkit/internal/repository"
	"rotkit/internal/service"
	"rotkit/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const TestJWTSecret = "test-secret-for-session-tokens"

// AuthEnv wires an AuthService against in-memory collaborators.
type AuthEnv struct {
	Clock    *FakeClock
	Users    *UserStore
	Admins   *AdminStore
	Logs     *SecurityLogStore
	OTPStore *repository.MemoryOTPStore
	Mailer   *Mailer
	Codes    *FixedCodes
	Logger   *logrus.Logger
	JWT      *utils.JWTManager
	Sessions service.JWTSessionIssuer
	OTP      *service.OTPService
	Auth     *service.AuthService
}

func NewAuthEnv() *AuthEnv {
	clock := NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger, _ := test.NewNullLogger()
	env := &AuthEnv{
		Clock:  clock,
		Users:  NewUserStore(),
		Admins: NewAdminStore(),
		Logs:   &SecurityLogStore{},
		Mailer: &Mailer{},
		Codes:  &FixedCodes{Codes: []string{"123456"}},
		Logger: logger,
	}
	env.OTPStore = repository.NewMemoryOTPStoreWithClock(clock.Now)
	env.JWT = &utils.JWTManager{Secret: []byte(TestJWTSecret), Issuer: "rotkit-test", Now: clock.Now}
	env.Sessions = service.JWTSessionIssuer{Manager: env.JWT}
	challenges := service.ChallengeTokenIssuerJWT{
		Secret: []byte(TestJWTSecret + "-challenge"),
		Issuer: "rotkit-test",
		TTL:    5 * time.Minute,
		Now:    clock.Now,
	}
	env.OTP = service.NewOTPService(env.OTPStore, env.Codes, clock, logger, service.AuthConfig{})
	env.Auth = service.NewAuthService(
		env.Users,
		env.Admins,
		env.Logs,
		env.OTP,
		env.Mailer,
		PlainHasher{},
		env.Sessions,
		challenges,
		clock,
		logger,
	)
	return env
}
