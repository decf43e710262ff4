package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rotkit/internal/entity"
	"rotkit/internal/repository"
	"rotkit/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"
	minPasswordLength = 8
)

type AuthService struct {
	users        repository.UserRepository
	admins       repository.AdminRepository
	securityLogs repository.SecurityLogRepository

	otps         *OTPService
	emailSender  EmailSender
	passwordHash PasswordHasher
	sessions     SessionTokenIssuer
	challenges   ChallengeTokenIssuer
	clock        Clock
	logger       logrus.FieldLogger
}

func NewAuthService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	securityLogs repository.SecurityLogRepository,
	otps *OTPService,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	sessions SessionTokenIssuer,
	challenges ChallengeTokenIssuer,
	clock Clock,
	logger logrus.FieldLogger,
) *AuthService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		users:        users,
		admins:       admins,
		securityLogs: securityLogs,
		otps:         otps,
		emailSender:  emailSender,
		passwordHash: passwordHash,
		sessions:     sessions,
		challenges:   challenges,
		clock:        clock,
		logger:       logger,
	}
}

// principalRecord is a Principal plus the fields only the service may see.
type principalRecord struct {
	Principal
	Audience     Audience
	PasswordHash string
	IsActive     bool
}

func (s *AuthService) CanResendOTP(ctx context.Context, email string) (ResendStatus, error) {
	address := utils.NormalizeEmail(email)
	if address == "" {
		return ResendStatus{}, ErrInvalidInput
	}
	return s.otps.CanResend(ctx, address)
}

func (s *AuthService) Me(ctx context.Context, identity SessionIdentity) (*Principal, error) {
	record, err := s.findForIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrUserNotFound
	}
	if !record.IsActive {
		return nil, ErrAccountInactive
	}
	return &record.Principal, nil
}

func (s *AuthService) Logout(ctx context.Context, identity *SessionIdentity, meta RequestMeta) {
	if identity == nil {
		return
	}
	principal := Principal{ID: identity.SubjectID, Role: identity.Role}
	_ = s.logSecurity(ctx, &principal, meta, entity.Logout, nil)
}

func (s *AuthService) ListSecurityLogs(ctx context.Context, limit int) ([]entity.SecurityLog, error) {
	if s.securityLogs == nil {
		return nil, nil
	}
	return s.securityLogs.ListRecent(ctx, limit)
}

// findForIdentity resolves a session subject. ADMIN sessions may belong to an
// admins row or to a users row carrying the ADMIN role.
func (s *AuthService) findForIdentity(ctx context.Context, identity SessionIdentity) (*principalRecord, error) {
	if identity.Role == entity.UserRoleAdmin {
		record, err := s.findByID(ctx, AudienceAdmin, identity.SubjectID)
		if err != nil || record != nil {
			return record, err
		}
	}
	return s.findByID(ctx, AudienceCustomer, identity.SubjectID)
}

func (s *AuthService) findByID(ctx context.Context, audience Audience, id uuid.UUID) (*principalRecord, error) {
	switch audience {
	case AudienceAdmin:
		admin, err := s.admins.FindByID(ctx, id)
		if err != nil || admin == nil {
			return nil, err
		}
		return adminRecord(admin), nil
	case AudienceCustomer:
		user, err := s.users.FindByID(ctx, id)
		if err != nil || user == nil {
			return nil, err
		}
		return userRecord(user), nil
	}
	return nil, ErrInvalidInput
}

func (s *AuthService) findByEmail(ctx context.Context, audience Audience, email string) (*principalRecord, error) {
	switch audience {
	case AudienceAdmin:
		admin, err := s.admins.FindByEmail(ctx, email)
		if err != nil || admin == nil {
			return nil, err
		}
		return adminRecord(admin), nil
	case AudienceCustomer:
		user, err := s.users.FindByEmail(ctx, email)
		if err != nil || user == nil {
			return nil, err
		}
		return userRecord(user), nil
	}
	return nil, ErrInvalidInput
}

func (s *AuthService) updatePassword(ctx context.Context, record *principalRecord, hash string) error {
	if record.Audience == AudienceAdmin {
		return s.admins.UpdatePassword(ctx, record.ID, hash)
	}
	return s.users.UpdatePassword(ctx, record.ID, hash)
}

func (s *AuthService) touchLastLogin(ctx context.Context, record *principalRecord) {
	now := s.now()
	var err error
	if record.Audience == AudienceAdmin {
		err = s.admins.UpdateLastLogin(ctx, record.ID, now)
	} else {
		err = s.users.UpdateLastLogin(ctx, record.ID, now)
	}
	if err != nil {
		s.logger.WithError(err).WithField("principal_id", record.ID).Warn("update last login")
		return
	}
	record.LastLoginAt = &now
}

// sendOTP issues a code for the address and mails it. An undeliverable code is
// discarded so the caller can retry without waiting out the cooldown.
func (s *AuthService) sendOTP(ctx context.Context, kind OTPEmailKind, address string, displayName string, principal *Principal, meta RequestMeta) error {
	code, err := s.otps.Issue(ctx, address)
	if err != nil {
		return err
	}
	sendErr := s.emailSender.SendOTPEmail(ctx, OTPEmail{
		Kind:        kind,
		To:          address,
		Code:        code,
		DisplayName: displayName,
		TTL:         s.otps.TTL(),
	})
	if sendErr != nil {
		s.logger.WithError(sendErr).WithFields(logrus.Fields{
			"kind": kind,
			"to":   utils.MaskEmail(address),
		}).Error("send otp email")
		if err := s.otps.Delete(ctx, address); err != nil {
			s.logger.WithError(err).Warn("discard undelivered otp")
		}
		var deliveryErr *DeliveryError
		if errors.As(sendErr, &deliveryErr) {
			return sendErr
		}
		return &DeliveryError{Provider: "mail", Err: sendErr}
	}
	_ = s.logSecurity(ctx, principal, meta, entity.OTPSent, map[string]any{"kind": kind, "to": utils.MaskEmail(address)})
	return nil
}

func (s *AuthService) verifyOTP(ctx context.Context, address string, code string, principal *Principal, meta RequestMeta) error {
	_, err := s.otps.Verify(ctx, address, code)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrInvalidInput) {
		metadata := map[string]any{"to": utils.MaskEmail(address), "reason": err.Error()}
		_ = s.logSecurity(ctx, principal, meta, entity.OTPFailed, metadata)
	}
	return err
}

func (s *AuthService) issueSession(record *principalRecord) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.IssueToken(record.ID, record.Role, TokenExtras{
		Email: record.Email,
		Name:  record.Name,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: record.Principal,
	}, nil
}

func (s *AuthService) issueChallenge(record *principalRecord) (*ChallengeResult, error) {
	token, ttl, err := s.challenges.IssueChallengeToken(record.ID, record.Audience)
	if err != nil {
		return nil, err
	}
	return &ChallengeResult{
		MaskedEmail:        utils.MaskEmail(record.Email),
		ChallengeToken:     token,
		ChallengeExpiresIn: int64(ttl.Seconds()),
	}, nil
}

// completeChallenge is the OTP step shared by customer and admin sign-in.
func (s *AuthService) completeChallenge(ctx context.Context, audience Audience, input ChallengeOTPInput) (*AuthResult, error) {
	if strings.TrimSpace(input.ChallengeToken) == "" || strings.TrimSpace(input.Code) == "" {
		return nil, ErrInvalidInput
	}
	subjectID, tokenAudience, err := s.challenges.ParseChallengeToken(input.ChallengeToken)
	if err != nil || tokenAudience != audience {
		return nil, ErrInvalidToken
	}
	record, err := s.findByID(ctx, audience, subjectID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrInvalidToken
	}
	if !record.IsActive {
		return nil, ErrAccountInactive
	}
	if err := s.verifyOTP(ctx, record.Email, strings.TrimSpace(input.Code), &record.Principal, input.Meta); err != nil {
		return nil, err
	}

	s.touchLastLogin(ctx, record)
	result, err := s.issueSession(record)
	if err != nil {
		return nil, err
	}
	_ = s.logSecurity(ctx, &record.Principal, input.Meta, entity.LoginSuccess, map[string]any{"audience": audience, "otp": true})
	return result, nil
}

// checkPassword burns a bcrypt comparison even for unknown principals.
func (s *AuthService) checkPassword(record *principalRecord, password string) bool {
	if record == nil || record.PasswordHash == "" {
		_ = s.passwordHash.Verify(dummyPasswordHash, password)
		return false
	}
	return s.passwordHash.Verify(record.PasswordHash, password)
}

func (s *AuthService) logSecurity(
	ctx context.Context,
	principal *Principal,
	meta RequestMeta,
	action entity.SecurityAction,
	metadata map[string]any,
) error {
	return recordSecurityEvent(ctx, s.securityLogs, principal, meta, action, metadata)
}

func recordSecurityEvent(
	ctx context.Context,
	logs repository.SecurityLogRepository,
	principal *Principal,
	meta RequestMeta,
	action entity.SecurityAction,
	metadata map[string]any,
) error {
	if logs == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}

	log := &entity.SecurityLog{
		IPAddress: meta.IPAddress,
		Action:    action,
		Metadata:  payload,
	}
	if principal != nil && principal.ID != uuid.Nil {
		id := principal.ID
		role := principal.Role
		log.PrincipalID = &id
		log.PrincipalRole = &role
	}
	return logs.Log(ctx, log)
}

func (s *AuthService) now() time.Time {
	return s.clock.Now()
}

func userRecord(user *entity.User) *principalRecord {
	record := &principalRecord{
		Principal: principalFromUser(user),
		Audience:  AudienceCustomer,
		IsActive:  user.IsActive,
	}
	if user.PasswordHash != nil {
		record.PasswordHash = *user.PasswordHash
	}
	return record
}

func adminRecord(admin *entity.Admin) *principalRecord {
	return &principalRecord{
		Principal:    principalFromAdmin(admin),
		Audience:     AudienceAdmin,
		PasswordHash: admin.PasswordHash,
		IsActive:     admin.IsActive,
	}
}
