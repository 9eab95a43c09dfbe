package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/pkg/logger"
)

// Sender delivers transactional mail over an SMTP relay (Resend's SMTP
// endpoint by default). Delivery failures are reported to the caller but
// are never fatal to the request paths that send mail.
type Sender struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

// New creates a new email sender. When cfg.Enabled is false every Send is a
// logged no-op.
func New(cfg config.EmailConfig, log *logger.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: log,
	}
}

// Send delivers a single HTML email.
func (s *Sender) Send(to, subject, htmlBody string) error {
	if !s.cfg.Enabled {
		s.logger.Debugf("Email disabled, skipping message to %s", to)
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		s.logger.With("to", to).ErrorWithErr(err, "Failed to send email")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")
	return nil
}

// SendWelcome sends the post-registration welcome mail.
func (s *Sender) SendWelcome(to, name string) error {
	greeting := "there"
	if name != "" {
		greeting = name
	}
	body := fmt.Sprintf(`<h1>Welcome to Planner</h1>
<p>Hi %s,</p>
<p>Your account is ready. Start by adding your first task or habit.</p>`, greeting)
	return s.Send(to, "Welcome to Planner", body)
}
