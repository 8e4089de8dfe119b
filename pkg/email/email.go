package email

import (
	"fmt"
	"net/smtp"
	"sort"

	"go.uber.org/zap"

	"github.com/narengee/c4c-api/pkg/config"
)

// Sender delivers outbound application mail.
type Sender interface {
	SendInvitation(toEmail, studentName, inviteURL string) error
}

// SMTPSender sends mail over plain SMTP. When the host is not configured it
// logs the message instead of sending, which keeps local development working
// without a mail server.
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSMTPSender builds a sender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// SendInvitation emails a family invitation link.
func (s *SMTPSender) SendInvitation(toEmail, studentName, inviteURL string) error {
	subject := fmt.Sprintf("%s invited you to follow their college journey", studentName)
	body := fmt.Sprintf(`<html><body>
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You have been invited</h2>
  <p>%s has invited you to follow their college application progress.</p>
  <p><a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Accept Invitation</a></p>
  <p>This link expires in 7 days. If you were not expecting this invitation you can ignore this email.</p>
</div>
</body></html>`, studentName, inviteURL)

	if s.cfg.Host == "" {
		s.logger.Warn("smtp not configured, logging invitation instead of sending",
			zap.String("to", toEmail),
			zap.String("invite_url", inviteURL),
		)
		return nil
	}

	return s.send(toEmail, subject, body)
}

func (s *SMTPSender) send(toEmail, subject, htmlBody string) error {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	message := ""
	for _, k := range keys {
		message += fmt.Sprintf("%s: %s\r\n", k, headers[k])
	}
	message += "\r\n" + htmlBody

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}

	return nil
}
