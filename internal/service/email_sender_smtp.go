package service

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/gomail.v2"
)

type SMTPEmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPEmailSender(host string, port int, username string, password string, from string) (*SMTPEmailSender, error) {
	if strings.TrimSpace(host) == "" || strings.TrimSpace(from) == "" {
		return nil, errors.New("smtp host and sender address are required")
	}
	return &SMTPEmailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}, nil
}

func (s *SMTPEmailSender) SendOTPEmail(ctx context.Context, email OTPEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rendered := renderOTPEmail(email)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", rendered.Subject)
	m.SetBody("text/plain", rendered.Text)
	m.AddAlternative("text/html", rendered.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return &DeliveryError{Provider: "smtp", Err: err}
	}
	return nil
}
