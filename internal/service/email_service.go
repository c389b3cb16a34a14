package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends transactional email via Amazon SES. When no sender
// address is configured the service runs disabled and every send becomes a
// logged no-op, so local development needs no AWS credentials.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", s.appBaseURL, resetToken)

	subject := "Reset Your KiddieRewards Password"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f59e0b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #f59e0b; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Password Reset Request</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>We received a request to reset your password for your KiddieRewards account.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Reset Password</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p><strong>This link will expire in 1 hour.</strong></p>
			<p>If you didn't request a password reset, you can safely ignore this email.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from KiddieRewards. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, resetLink, resetLink)

	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset your password for your KiddieRewards account.

Click the link below to reset your password:
%s

This link will expire in 1 hour.

If you didn't request a password reset, you can safely ignore this email.

---
This is an automated email from KiddieRewards. Please do not reply.
`, toName, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendInvitationEmail sends a family join code to a co-parent
func (s *EmailService) SendInvitationEmail(ctx context.Context, toEmail, familyName, code string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invitation to %s", toEmail)
		return nil
	}

	joinLink := fmt.Sprintf("%s/family/join?code=%s", s.appBaseURL, code)

	subject := fmt.Sprintf("You're invited to join %s on KiddieRewards", familyName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f59e0b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.code { font-size: 24px; letter-spacing: 4px; font-weight: bold; text-align: center; margin: 20px 0; }
		.button { display: inline-block; padding: 12px 30px; background-color: #f59e0b; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Family Invitation</h1>
		</div>
		<div class="content">
			<p>Hello,</p>
			<p>You've been invited to join the family <strong>%s</strong> on KiddieRewards.</p>
			<p>Your join code:</p>
			<p class="code">%s</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Join Family</a>
			</p>
			<p><strong>This invitation expires in 7 days.</strong></p>
		</div>
		<div class="footer">
			<p>This is an automated email from KiddieRewards. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, familyName, code, joinLink)

	textBody := fmt.Sprintf(`Hello,

You've been invited to join the family %s on KiddieRewards.

Your join code: %s

Join here: %s

This invitation expires in 7 days.

---
This is an automated email from KiddieRewards. Please do not reply.
`, familyName, code, joinLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
