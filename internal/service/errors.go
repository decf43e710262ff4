package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailAlreadyRegistered = errors.New("an account with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountInactive        = errors.New("account is deactivated")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token expired")
	ErrUserNotFound           = errors.New("no account found with this email address")
	ErrRateLimited            = errors.New("otp requested too recently")
	ErrOTPNotFound            = errors.New("no otp found for this email, please request a new one")
	ErrOTPExpired             = errors.New("otp has expired, please request a new one")
	ErrTooManyAttempts        = errors.New("too many failed attempts, please request a new otp")
	ErrInvalidOTP             = errors.New("invalid otp")
	ErrDeliveryFailed         = errors.New("failed to send otp email")
	ErrStorageNotConfigured   = errors.New("file storage is not configured")
)

// RateLimitedError reports the remaining resend cooldown.
type RateLimitedError struct {
	WaitSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new otp", e.WaitSeconds)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

type InvalidCodeError struct {
	AttemptsLeft int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid otp, %d attempts remaining", e.AttemptsLeft)
}

func (e *InvalidCodeError) Is(target error) bool {
	return target == ErrInvalidOTP
}

// DeliveryError wraps a mail provider failure.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDeliveryFailed, e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDeliveryFailed, e.Err}
}
