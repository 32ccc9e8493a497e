// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
)

// Service handles all outgoing email
type Service struct {
	config *config.Config
}

// NewService creates a new email service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// Enabled reports whether an SMTP host is configured
func (s *Service) Enabled() bool {
	return s.config.Email.SMTPHost != ""
}

// SendOrderNote notifies a customer about a new note on their order.
// Callers treat failures as best-effort.
func (s *Service) SendOrderNote(ctx context.Context, toEmail, orderNumber, note string) error {
	if !s.Enabled() {
		return fmt.Errorf("email not configured")
	}

	msg := &Message{
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Update on your order %s", orderNumber),
		Body: fmt.Sprintf(
			"Hello,\r\n\r\nThere is a new update on your order %s:\r\n\r\n%s\r\n\r\n%s",
			orderNumber, note, s.config.Email.FromName,
		),
	}

	return s.send(ctx, msg)
}

// SendAdminLoginAlert notifies the site operator about an admin sign-in.
func (s *Service) SendAdminLoginAlert(ctx context.Context, adminEmail, ip, userAgent string) error {
	if !s.Enabled() {
		return fmt.Errorf("email not configured")
	}

	msg := &Message{
		To:      []string{s.config.Email.AdminEmail},
		Subject: fmt.Sprintf("Admin login: %s", adminEmail),
		Body: fmt.Sprintf(
			"Admin account %s signed in at %s.\r\n\r\nIP address: %s\r\nUser agent: %s\r\n",
			adminEmail, time.Now().UTC().Format(time.RFC3339), ip, userAgent,
		),
	}

	return s.send(ctx, msg)
}
