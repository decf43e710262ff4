package service_test

import (
	"testing"
	"time"

	"rotkit/internal/entity"
	"rotkit/internal/service"
	"rotkit/internal/testutil"
	"rotkit/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newSessionIssuer(clock *testutil.FakeClock, secret string) service.JWTSessionIssuer {
	return service.JWTSessionIssuer{Manager: &utils.JWTManager{Secret: []byte(secret), Issuer: "rotkit", Now: clock.Now}}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := newSessionIssuer(clock, "secret")
	subject := uuid.New()

	for _, role := range []entity.UserRole{entity.UserRoleCustomer, entity.UserRoleAdmin} {
		token, expiresAt, err := issuer.IssueToken(subject, role, service.TokenExtras{})
		require.NoError(t, err)
		require.Equal(t, clock.Now().Add(7*24*time.Hour), expiresAt)

		identity, err := issuer.VerifyToken(token)
		require.NoError(t, err)
		require.Equal(t, subject, identity.SubjectID)
		require.Equal(t, role, identity.Role)
		require.Empty(t, identity.Email)
	}
}

func TestSessionTokenCarriesExtras(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := newSessionIssuer(clock, "secret")

	token, _, err := issuer.IssueToken(uuid.New(), entity.UserRoleCustomer, service.TokenExtras{Email: "jane@example.com", Name: "Jane"})
	require.NoError(t, err)
	identity, err := issuer.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", identity.Email)
	require.Equal(t, "Jane", identity.Name)
}

func TestSessionTokenExpiresAfterSevenDays(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := newSessionIssuer(clock, "secret")

	token, _, err := issuer.IssueToken(uuid.New(), entity.UserRoleAdmin, service.TokenExtras{})
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour - time.Minute)
	_, err = issuer.VerifyToken(token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = issuer.VerifyToken(token)
	require.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestSessionTokenRejectsTampering(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := newSessionIssuer(clock, "secret")
	other := newSessionIssuer(clock, "another-secret")

	token, _, err := other.IssueToken(uuid.New(), entity.UserRoleAdmin, service.TokenExtras{})
	require.NoError(t, err)
	_, err = issuer.VerifyToken(token)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = issuer.VerifyToken("not.a.token")
	require.ErrorIs(t, err, service.ErrInvalidToken)

	_, _, err = issuer.IssueToken(uuid.New(), entity.UserRole("SUPERUSER"), service.TokenExtras{})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestChallengeTokenIsNotASession(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sessions := newSessionIssuer(clock, "shared")
	challenges := service.ChallengeTokenIssuerJWT{Secret: []byte("shared"), Now: clock.Now}

	challenge, ttl, err := challenges.IssueChallengeToken(uuid.New(), service.AudienceAdmin)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, ttl)

	_, err = sessions.VerifyToken(challenge)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	session, _, err := sessions.IssueToken(uuid.New(), entity.UserRoleAdmin, service.TokenExtras{})
	require.NoError(t, err)
	_, _, err = challenges.ParseChallengeToken(session)
	require.ErrorIs(t, err, service.ErrInvalidToken)

	clock.Advance(6 * time.Minute)
	_, _, err = challenges.ParseChallengeToken(challenge)
	require.ErrorIs(t, err, service.ErrInvalidToken)
}
