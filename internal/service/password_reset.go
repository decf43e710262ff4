package service

import (
	"context"
	"strings"

	"rotkit/internal/entity"
	"rotkit/internal/utils"
)

func (s *AuthService) RequestPasswordResetOTP(ctx context.Context, input PasswordResetOTPInput) error {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || !input.Audience.Valid() {
		return ErrInvalidInput
	}
	record, err := s.findByEmail(ctx, input.Audience, email)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrUserNotFound
	}
	if !record.IsActive {
		return ErrAccountInactive
	}

	kind := OTPEmailForgotPassword
	if input.Audience == AudienceAdmin {
		kind = OTPEmailAdminForgotPassword
	}
	return s.sendOTP(ctx, kind, record.Email, record.Name, &record.Principal, input.Meta)
}

// ResetPasswordWithOTP requires a new password alongside the emailed code;
// the code alone never yields a session.
func (s *AuthService) ResetPasswordWithOTP(ctx context.Context, input PasswordResetInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || !input.Audience.Valid() || len(input.NewPassword) < minPasswordLength {
		return nil, ErrInvalidInput
	}
	record, err := s.findByEmail(ctx, input.Audience, email)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrUserNotFound
	}
	if !record.IsActive {
		return nil, ErrAccountInactive
	}
	if err := s.verifyOTP(ctx, record.Email, strings.TrimSpace(input.Code), &record.Principal, input.Meta); err != nil {
		return nil, err
	}

	hash, err := s.passwordHash.Hash(input.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.updatePassword(ctx, record, hash); err != nil {
		return nil, err
	}
	record.PasswordHash = hash

	s.touchLastLogin(ctx, record)
	result, err := s.issueSession(record)
	if err != nil {
		return nil, err
	}
	_ = s.logSecurity(ctx, &record.Principal, input.Meta, entity.Reset, map[string]any{"audience": input.Audience})
	return result, nil
}
