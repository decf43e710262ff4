package service

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const brandName = "ROT KIT"

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

func renderOTPEmail(email OTPEmail) renderedEmail {
	minutes := int(email.TTL / time.Minute)
	if minutes <= 0 {
		minutes = int(defaultOTPTTL / time.Minute)
	}
	greeting := "Hello"
	if name := strings.TrimSpace(email.DisplayName); name != "" {
		greeting = "Hello " + name
	}

	var subject, intro string
	switch email.Kind {
	case OTPEmailSignup:
		subject = "Verify your email for " + brandName
		intro = "Use this code to finish creating your account."
	case OTPEmailCustomerLogin:
		subject = brandName + " sign-in code"
		intro = "Use this code to finish signing in."
	case OTPEmailAdminLogin:
		subject = brandName + " admin sign-in code"
		intro = "Your admin credentials were accepted. Use this code to finish signing in to the dashboard."
	case OTPEmailForgotPassword:
		subject = "Reset your " + brandName + " password"
		intro = "Use this code to reset your password."
	case OTPEmailAdminForgotPassword:
		subject = "Reset your " + brandName + " admin password"
		intro = "Use this code to reset your admin password."
	default:
		subject = brandName + " verification code"
		intro = "Use this code to continue."
	}

	text := fmt.Sprintf("%s,\n\n%s\n\nCode: %s\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
		greeting, intro, email.Code, minutes)
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
  <h2>%s</h2>
  <p>%s,</p>
  <p>%s</p>
  <p style="font-size:28px;font-weight:bold;letter-spacing:6px">%s</p>
  <p>It expires in %d minutes. If you did not request it, ignore this email.</p>
</div>`,
		brandName, html.EscapeString(greeting), html.EscapeString(intro), email.Code, minutes)

	return renderedEmail{Subject: subject, HTML: body, Text: text}
}
