package service

import (
	"errors"
	"time"

	"rotkit/internal/entity"
	"rotkit/internal/utils"

	"github.com/google/uuid"
)

type JWTSessionIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTSessionIssuer) IssueToken(subjectID uuid.UUID, role entity.UserRole, extras TokenExtras) (string, time.Time, error) {
	if j.Manager == nil || subjectID == uuid.Nil || !role.Valid() {
		return "", time.Time{}, ErrInvalidInput
	}
	return j.Manager.IssueSessionToken(subjectID.String(), string(role), extras.Email, extras.Name)
}

func (j JWTSessionIssuer) VerifyToken(token string) (*SessionIdentity, error) {
	if j.Manager == nil {
		return nil, ErrInvalidToken
	}
	claims, err := j.Manager.ParseSessionToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role := entity.UserRole(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidToken
	}
	identity := &SessionIdentity{
		SubjectID: subjectID,
		Role:      role,
		Email:     claims.Email,
		Name:      claims.Name,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
