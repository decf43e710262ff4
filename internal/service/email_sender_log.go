package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogEmailSender writes codes to the log instead of mailing them. Development only.
type LogEmailSender struct {
	Logger logrus.FieldLogger
}

func (s LogEmailSender) SendOTPEmail(_ context.Context, email OTPEmail) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"kind": email.Kind,
		"to":   email.To,
		"code": email.Code,
	}).Warn("otp email not sent, log mail driver active")
	return nil
}
