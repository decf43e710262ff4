package service

import (
	"context"
	"errors"
	"strings"

	"github.com/resendlabs/resend-go"
)

type ResendEmailSender struct {
	client *resend.Client
	from   string
}

func NewResendEmailSender(apiKey string, from string) (*ResendEmailSender, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return nil, errors.New("resend api key and sender address are required")
	}
	return &ResendEmailSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}, nil
}

func (s *ResendEmailSender) SendOTPEmail(ctx context.Context, email OTPEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rendered := renderOTPEmail(email)
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: rendered.Subject,
		Html:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		return &DeliveryError{Provider: "resend", Err: err}
	}
	return nil
}
