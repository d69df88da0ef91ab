// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package mailer delivers transactional email through SendGrid.

Every send is best-effort from the caller's perspective: services log
delivery failures but never fail a user-facing operation because an email
could not be sent. The Mailer interface keeps SendGrid out of the domain
packages and lets tests substitute a recorder.
*/
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/colorpro/colorpro/internal/platform/ctxutil"
)

// Mailer sends transactional email to platform users.
type Mailer interface {
	// SendPasswordReset delivers a password reset token to the given address.
	SendPasswordReset(ctx context.Context, toEmail, toName, resetToken string) error

	// SendAnalysisComplete notifies a user that their color analysis is ready.
	SendAnalysisComplete(ctx context.Context, toEmail, toName, analysisID string) error

	// SendWelcome greets a freshly registered account.
	SendWelcome(ctx context.Context, toEmail, toName string) error
}

// SendGridMailer implements Mailer on top of the SendGrid v3 API.
type SendGridMailer struct {
	client   *sendgrid.Client
	fromAddr string
	fromName string
}

// NewSendGridMailer creates a mailer bound to one verified sender identity.
func NewSendGridMailer(apiKey, fromAddr, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

func (m *SendGridMailer) send(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: unexpected status %d: %s", response.StatusCode, response.Body)
	}

	ctxutil.GetLogger(ctx).Debug("email_sent",
		"to", toEmail,
		"subject", subject,
		"provider_status", response.StatusCode,
	)
	return nil
}

// SendPasswordReset delivers a password reset token to the given address.
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetToken string) error {
	subject := "Reset your ColorPro password"
	plain := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your ColorPro password.\n\n"+
			"Your reset code is: %s\n\nThe code expires in one hour. "+
			"If you did not request this, you can safely ignore this email.\n\nThe ColorPro Team",
		toName, resetToken,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received a request to reset your ColorPro password.</p>"+
			"<p>Your reset code is: <strong>%s</strong></p>"+
			"<p>The code expires in one hour. If you did not request this, you can safely ignore this email.</p>"+
			"<p>The ColorPro Team</p>",
		toName, resetToken,
	)
	return m.send(ctx, toEmail, toName, subject, plain, html)
}

// SendAnalysisComplete notifies a user that their color analysis is ready.
func (m *SendGridMailer) SendAnalysisComplete(ctx context.Context, toEmail, toName, analysisID string) error {
	subject := "Your ColorPro analysis is ready"
	plain := fmt.Sprintf(
		"Hi %s,\n\nGood news: your personal color analysis is complete.\n\n"+
			"Open the app to view your results (analysis %s).\n\nThe ColorPro Team",
		toName, analysisID,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Good news: your personal color analysis is complete.</p>"+
			"<p>Open the app to view your results (analysis %s).</p><p>The ColorPro Team</p>",
		toName, analysisID,
	)
	return m.send(ctx, toEmail, toName, subject, plain, html)
}

// SendWelcome greets a freshly registered account.
func (m *SendGridMailer) SendWelcome(ctx context.Context, toEmail, toName string) error {
	subject := "Welcome to ColorPro"
	plain := fmt.Sprintf(
		"Hi %s,\n\nWelcome to ColorPro! Your account is ready.\n\n"+
			"Upload your photos to get your first color analysis.\n\nThe ColorPro Team",
		toName,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to ColorPro! Your account is ready.</p>"+
			"<p>Upload your photos to get your first color analysis.</p><p>The ColorPro Team</p>",
		toName,
	)
	return m.send(ctx, toEmail, toName, subject, plain, html)
}
