package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("OTP_STORE", "")
	t.Setenv("MAIL_PROVIDER", "")
	t.Setenv("CHALLENGE_JWT_SECRET", "")
	t.Setenv("OTP_TTL_MINUTES", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.OTPStore)
	require.Equal(t, "resend", cfg.Mail.Provider)
	require.Equal(t, 5*time.Minute, cfg.OTPTTL)
	require.Equal(t, "s3cret", cfg.ChallengeJWTSecret)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, "0 3 * * *", cfg.SecurityLogPruneSpec)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.EqualError(t, err, "JWT_SECRET is required")
}

func TestValidateRejectsUnknownDrivers(t *testing.T) {
	cfg := &Config{JWTSecret: "x", OTPStore: "memcached", OTPTTL: time.Minute, Mail: MailConfig{Provider: "log"}}
	require.Error(t, cfg.Validate())

	cfg.OTPStore = "memory"
	cfg.Mail.Provider = "pigeon"
	require.Error(t, cfg.Validate())

	cfg.Mail.Provider = "smtp"
	require.NoError(t, cfg.Validate())
}

func TestGetEnvIntFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "abc")
	require.Equal(t, 20, getEnvInt("RATE_LIMIT_PER_MINUTE", 20))
	t.Setenv("RATE_LIMIT_PER_MINUTE", "45")
	require.Equal(t, 45, getEnvInt("RATE_LIMIT_PER_MINUTE", 20))
}
