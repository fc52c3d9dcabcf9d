package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agribuddy/notify-engine/internal/domain"
)

func TestNewSMTPSender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  SMTPConfig
		wantErr bool
	}{
		{
			name:    "valid",
			config:  SMTPConfig{Host: "smtp.example.com", Port: 587, From: "alerts@agribuddy.ug"},
			wantErr: false,
		},
		{
			name:    "missing host",
			config:  SMTPConfig{From: "alerts@agribuddy.ug"},
			wantErr: true,
		},
		{
			name:    "missing from",
			config:  SMTPConfig{Host: "smtp.example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSMTPSender(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSMTPSender() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("NewSMTPSender() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSMTPSenderRejectsBlankRecipient(t *testing.T) {
	t.Parallel()

	sender, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "alerts@agribuddy.ug"})
	if err != nil {
		t.Fatalf("NewSMTPSender() error = %v", err)
	}

	_, err = sender.SendEmail(context.Background(), Message{To: "  ", Subject: "x", Body: "y"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SendEmail() error = %v, want ErrValidation", err)
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	got := renderHTML("Alert <script>", "a & b")
	if strings.Contains(got, "<script>") {
		t.Errorf("renderHTML() did not escape subject: %q", got)
	}
	if !strings.Contains(got, "a &amp; b") {
		t.Errorf("renderHTML() did not escape body: %q", got)
	}
}

func TestMockSenderRecordsMessages(t *testing.T) {
	t.Parallel()

	sender := NewMockSender()

	id, err := sender.SendEmail(context.Background(), Message{
		To:      "farmer@example.com",
		Subject: "Weather Alert: Storm",
		Body:    "Take cover",
	})
	if err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}
	if !strings.HasPrefix(id, "mock-") {
		t.Errorf("SendEmail() id = %q, want mock- prefix", id)
	}

	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("Messages() len = %d, want 1", len(messages))
	}
	if messages[0].To != "farmer@example.com" {
		t.Errorf("recorded recipient = %q", messages[0].To)
	}
}

func TestMockSenderFailWith(t *testing.T) {
	t.Parallel()

	sender := NewMockSender()
	sender.FailWith(errors.New("smtp unreachable"))

	if _, err := sender.SendEmail(context.Background(), Message{To: "a@b.c"}); err == nil {
		t.Error("SendEmail() should fail after FailWith")
	}
	if len(sender.Messages()) != 0 {
		t.Error("failed send should not be recorded")
	}
}
