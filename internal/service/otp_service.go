package service

import (
	"context"
	"math"
	"time"

	"rotkit/internal/repository"
	"rotkit/internal/utils"

	"github.com/sirupsen/logrus"
)

const (
	defaultOTPTTL         = 5 * time.Minute
	defaultResendCooldown = time.Minute
	defaultMaxOTPAttempts = 5
	otpDigits             = 6
)

// OTPService issues and checks one-time passcodes keyed by email address.
type OTPService struct {
	store     repository.OTPStore
	generator CodeGenerator
	clock     Clock
	logger    logrus.FieldLogger

	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int
}

func NewOTPService(store repository.OTPStore, generator CodeGenerator, clock Clock, logger logrus.FieldLogger, config AuthConfig) *OTPService {
	if generator == nil {
		generator = NewRandomCodeGenerator()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &OTPService{
		store:       store,
		generator:   generator,
		clock:       clock,
		logger:      logger,
		ttl:         config.OTPTTL,
		cooldown:    config.ResendCooldown,
		maxAttempts: config.MaxOTPAttempts,
	}
	if s.ttl <= 0 {
		s.ttl = defaultOTPTTL
	}
	if s.cooldown <= 0 {
		s.cooldown = defaultResendCooldown
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxOTPAttempts
	}
	return s
}

func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// Generate returns a fresh code, or a RateLimitedError while the previous
// code for the address is still inside its resend cooldown.
func (s *OTPService) Generate(ctx context.Context, address string) (string, error) {
	status, err := s.CanResend(ctx, address)
	if err != nil {
		return "", err
	}
	if !status.CanResend {
		return "", &RateLimitedError{WaitSeconds: status.WaitSeconds}
	}
	return s.generator.Generate()
}

// Store replaces any record for the address. A non-positive ttl uses the default.
func (s *OTPService) Store(ctx context.Context, address string, code string, ttl time.Duration) error {
	if address == "" || !validCodeFormat(code, otpDigits) {
		return ErrInvalidInput
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.clock.Now()
	return s.store.Put(ctx, repository.OTPRecord{
		Address:   address,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
}

// Issue generates a code and stores it only if the address is outside its
// resend cooldown. The check and the write are one store operation, so
// concurrent requests for an address yield exactly one code.
func (s *OTPService) Issue(ctx context.Context, address string) (string, error) {
	if address == "" {
		return "", ErrInvalidInput
	}
	code, err := s.generator.Generate()
	if err != nil {
		return "", err
	}
	if !validCodeFormat(code, otpDigits) {
		return "", ErrInvalidInput
	}
	now := s.clock.Now()
	stored, wait, err := s.store.PutIfIdle(ctx, repository.OTPRecord{
		Address:   address,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}, s.cooldown)
	if err != nil {
		return "", err
	}
	if !stored {
		return "", &RateLimitedError{WaitSeconds: waitSeconds(wait)}
	}
	return code, nil
}

func (s *OTPService) Verify(ctx context.Context, address string, code string) (VerifyResult, error) {
	if address == "" || !validCodeFormat(code, otpDigits) {
		return VerifyResult{}, ErrInvalidInput
	}
	result, err := s.store.Consume(ctx, address, code, s.clock.Now(), s.maxAttempts)
	if err != nil {
		return VerifyResult{}, err
	}
	switch result.Outcome {
	case repository.ConsumeMatched:
		return VerifyResult{Success: true, AttemptsLeft: s.maxAttempts - result.Attempts}, nil
	case repository.ConsumeExpired:
		return VerifyResult{}, ErrOTPExpired
	case repository.ConsumeExhausted:
		s.logger.WithField("address", utils.MaskEmail(address)).Warn("otp discarded after too many attempts")
		return VerifyResult{}, ErrTooManyAttempts
	case repository.ConsumeMismatch:
		left := max(s.maxAttempts-result.Attempts, 0)
		return VerifyResult{AttemptsLeft: left}, &InvalidCodeError{AttemptsLeft: left}
	}
	return VerifyResult{}, ErrOTPNotFound
}

// CanResend never mutates state.
func (s *OTPService) CanResend(ctx context.Context, address string) (ResendStatus, error) {
	record, err := s.store.Get(ctx, address)
	if err != nil {
		return ResendStatus{}, err
	}
	now := s.clock.Now()
	if record == nil || now.After(record.ExpiresAt) {
		return ResendStatus{CanResend: true}, nil
	}
	elapsed := now.Sub(record.CreatedAt)
	if elapsed >= s.cooldown {
		return ResendStatus{CanResend: true}, nil
	}
	return ResendStatus{CanResend: false, WaitSeconds: waitSeconds(s.cooldown - elapsed)}, nil
}

func (s *OTPService) Delete(ctx context.Context, address string) error {
	return s.store.Delete(ctx, address)
}

func waitSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
