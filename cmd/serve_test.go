package main

import (
	"testing"
	"time"

	"rotkit/config"
	"rotkit/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChallengeIssuerFollowsOTPTTL(t *testing.T) {
	for _, ttl := range []time.Duration{5 * time.Minute, 15 * time.Minute} {
		cfg := &config.Config{ChallengeJWTSecret: "challenge-secret", JWTIssuer: "rotkit", OTPTTL: ttl}
		issuer := newChallengeIssuer(cfg)

		token, expiresIn, err := issuer.IssueChallengeToken(uuid.New(), service.AudienceAdmin)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, ttl, expiresIn)
	}
}
