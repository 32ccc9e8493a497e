// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// send delivers a message over SMTP
func (s *Service) send(ctx context.Context, msg *Message) error {
	if s.config.Email.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.config.Email.SMTPUser != "" {
		auth = smtp.PlainAuth("",
			s.config.Email.SMTPUser,
			s.config.Email.SMTPPass,
			s.config.Email.SMTPHost)
	}

	// Prepare from address
	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}

	// Prepare email headers and body
	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(msg.To, ", "),
		"Subject":      msg.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=\"utf-8\"",
	}

	var buf bytes.Buffer
	for key, value := range headers {
		buf.WriteString(fmt.Sprintf("%s: %s\r\n", key, value))
	}
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)

	serverAddr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(serverAddr, auth, s.config.Email.FromEmail, msg.To, buf.Bytes())
}
