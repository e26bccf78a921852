package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/kyoolapp/lifestyle-sub000/internal/config"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
)

var ErrEmailNotConfigured = errors.New("email provider not configured")

type resendSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailService sends notification mail through resend, or writes it to the
// log when the provider is "console".
type EmailService struct {
	provider string
	from     string
	resend   resendSender
	logger   *logging.Logger
}

func NewEmailService(cfg *config.EmailConfig, logger *logging.Logger) *EmailService {
	if logger == nil {
		logger = logging.Default
	}
	svc := &EmailService{
		provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		from:     formatFrom(cfg.FromName, cfg.FromAddress),
		logger:   logger,
	}
	if svc.provider == "resend" && cfg.ResendAPIKey != "" {
		svc.resend = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return svc
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func (s *EmailService) SendNotificationEmail(ctx context.Context, toEmail, subject, html, text string) error {
	if toEmail == "" {
		return errors.New("recipient is required")
	}
	switch s.provider {
	case "resend":
		if s.resend == nil {
			return ErrEmailNotConfigured
		}
		resp, err := s.resend.SendWithContext(ctx, &resend.SendEmailRequest{
			From:    s.from,
			To:      []string{toEmail},
			Subject: subject,
			Html:    html,
			Text:    text,
		})
		if err != nil {
			return fmt.Errorf("sending email: %w", err)
		}
		s.logger.Debug("Email sent", map[string]interface{}{"to": toEmail, "id": resp.Id})
		return nil
	case "console", "":
		s.logger.Info("Email (console)", map[string]interface{}{
			"from":    s.from,
			"to":      toEmail,
			"subject": subject,
			"text":    text,
		})
		return nil
	}
	return fmt.Errorf("unknown email provider %q", s.provider)
}
