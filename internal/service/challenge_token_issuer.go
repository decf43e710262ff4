package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const challengeTokenType = "otp_challenge"

// ChallengeTokenIssuerJWT binds the credentials step of a two-factor login to
// the OTP step. It is only accepted by the OTP verification endpoints.
type ChallengeTokenIssuerJWT struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

type challengeClaims struct {
	Kind string `json:"kind"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

func (m ChallengeTokenIssuerJWT) IssueChallengeToken(subjectID uuid.UUID, audience Audience) (string, time.Duration, error) {
	ttl := m.TTL
	if ttl == 0 {
		ttl = defaultOTPTTL
	}
	now := m.now()
	claims := challengeClaims{
		Kind: string(audience),
		Type: challengeTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

func (m ChallengeTokenIssuerJWT) ParseChallengeToken(token string) (uuid.UUID, Audience, error) {
	parsed, err := jwt.ParseWithClaims(token, &challengeClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*challengeClaims)
	if !ok || !parsed.Valid || claims.Type != challengeTokenType {
		return uuid.Nil, "", ErrInvalidToken
	}
	audience := Audience(claims.Kind)
	if !audience.Valid() {
		return uuid.Nil, "", ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	return id, audience, nil
}

func (m ChallengeTokenIssuerJWT) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
