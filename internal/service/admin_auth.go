package service

import (
	"context"
	"strings"

	"rotkit/internal/entity"
)

// StartAdminLogin is the credentials step of admin sign-in. Only a masked
// email is returned; the challenge token carries the admin identity forward.
func (s *AuthService) StartAdminLogin(ctx context.Context, input AdminCredentialsInput) (*ChallengeResult, error) {
	adminID := strings.TrimSpace(input.AdminID)
	if adminID == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	admin, err := s.admins.FindByAdminID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	var record *principalRecord
	if admin != nil {
		record = adminRecord(admin)
	}
	if !s.checkPassword(record, input.Password) {
		var principal *Principal
		if record != nil {
			principal = &record.Principal
		}
		_ = s.logSecurity(ctx, principal, input.Meta, entity.LoginFailed, map[string]any{"admin_id": adminID})
		return nil, ErrInvalidCredentials
	}
	if !record.IsActive {
		return nil, ErrAccountInactive
	}

	challenge, err := s.issueChallenge(record)
	if err != nil {
		return nil, err
	}
	if err := s.sendOTP(ctx, OTPEmailAdminLogin, record.Email, record.Name, &record.Principal, input.Meta); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *AuthService) CompleteAdminLogin(ctx context.Context, input ChallengeOTPInput) (*AuthResult, error) {
	return s.completeChallenge(ctx, AudienceAdmin, input)
}
