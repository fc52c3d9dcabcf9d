package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// SMTPConfig carries the SMTP server settings.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Encryption string
}

var _ Sender = (*SMTPSender)(nil)

// SMTPSender delivers email through an SMTP server using go-mail.
type SMTPSender struct {
	config SMTPConfig
}

func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(config.Host) == "" {
		return nil, fmt.Errorf("%w: smtp host is required", domain.ErrValidation)
	}
	if strings.TrimSpace(config.From) == "" {
		return nil, fmt.Errorf("%w: smtp from address is required", domain.ErrValidation)
	}
	if config.Port <= 0 {
		config.Port = 587
	}

	return &SMTPSender{config: config}, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, msg Message) (string, error) {
	if s == nil {
		return "", fmt.Errorf("smtp sender is not initialized")
	}

	to := strings.TrimSpace(msg.To)
	if to == "" {
		return "", fmt.Errorf("%w: recipient email is required", domain.ErrValidation)
	}

	m := mail.NewMsg()
	if err := m.From(s.config.From); err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return "", fmt.Errorf("%w: invalid recipient %q", domain.ErrValidation, to)
	}

	messageID := uuid.NewString()
	m.SetMessageIDWithValue(messageID)
	m.Subject(msg.Subject)

	// Plain-text body for clients that don't render HTML.
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	m.AddAlternativeString(mail.TypeTextHTML, renderHTML(msg.Subject, msg.Body))

	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(s.config.Encryption)),
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return messageID, nil
}

func renderHTML(subject, body string) string {
	return fmt.Sprintf(
		"<html><body><h3>%s</h3><p>%s</p></body></html>",
		html.EscapeString(subject),
		html.EscapeString(body),
	)
}

func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "ssl_tls":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}
