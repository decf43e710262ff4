package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendgridEmailSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendgridEmailSender(apiKey string, from string, fromName string) (*SendgridEmailSender, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return nil, errors.New("sendgrid api key and sender address are required")
	}
	if fromName == "" {
		fromName = brandName
	}
	return &SendgridEmailSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SendgridEmailSender) SendOTPEmail(ctx context.Context, email OTPEmail) error {
	rendered := renderOTPEmail(email)
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		rendered.Subject,
		mail.NewEmail(email.DisplayName, email.To),
		rendered.Text,
		rendered.HTML,
	)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return &DeliveryError{Provider: "sendgrid", Err: err}
	}
	if response.StatusCode >= 300 {
		return &DeliveryError{Provider: "sendgrid", Err: fmt.Errorf("unexpected status %d", response.StatusCode)}
	}
	return nil
}
