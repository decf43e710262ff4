package service

import (
	"context"
	"errors"
	"strings"

	"rotkit/internal/entity"
	"rotkit/internal/repository"
	"rotkit/internal/utils"
)

func (s *AuthService) RequestSignupOTP(ctx context.Context, input SignupOTPInput) error {
	email := utils.NormalizeEmail(input.Email)
	if email == "" {
		return ErrInvalidInput
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyRegistered
	}
	return s.sendOTP(ctx, OTPEmailSignup, email, strings.TrimSpace(input.Name), nil, input.Meta)
}

// CompleteSignup consumes the signup code and creates a verified customer account.
func (s *AuthService) CompleteSignup(ctx context.Context, input CompleteSignupInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || len(input.Password) < minPasswordLength {
		return nil, ErrInvalidInput
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	if err := s.verifyOTP(ctx, email, strings.TrimSpace(input.Code), nil, input.Meta); err != nil {
		return nil, err
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &entity.User{
		Email:           email,
		Name:            name,
		PasswordHash:    &hash,
		Role:            entity.UserRoleCustomer,
		IsActive:        true,
		EmailVerifiedAt: &now,
		LastLoginAt:     &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	record := userRecord(user)
	result, err := s.issueSession(record)
	if err != nil {
		return nil, err
	}
	_ = s.logSecurity(ctx, &record.Principal, input.Meta, entity.SignupCompleted, nil)
	return result, nil
}

// StartCustomerLogin checks email and password, then mails a sign-in code.
func (s *AuthService) StartCustomerLogin(ctx context.Context, input CustomerCredentialsInput) (*ChallengeResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	record, err := s.findByEmail(ctx, AudienceCustomer, email)
	if err != nil {
		return nil, err
	}
	if !s.checkPassword(record, input.Password) {
		var principal *Principal
		if record != nil {
			principal = &record.Principal
		}
		_ = s.logSecurity(ctx, principal, input.Meta, entity.LoginFailed, map[string]any{"email": utils.MaskEmail(email)})
		return nil, ErrInvalidCredentials
	}
	if !record.IsActive {
		return nil, ErrAccountInactive
	}

	challenge, err := s.issueChallenge(record)
	if err != nil {
		return nil, err
	}
	if err := s.sendOTP(ctx, OTPEmailCustomerLogin, record.Email, record.Name, &record.Principal, input.Meta); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *AuthService) CompleteCustomerLogin(ctx context.Context, input ChallengeOTPInput) (*AuthResult, error) {
	return s.completeChallenge(ctx, AudienceCustomer, input)
}
