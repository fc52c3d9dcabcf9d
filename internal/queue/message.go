package queue

import (
	"fmt"
	"strings"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// NotificationMessage is the broker payload for asynchronous delivery. It
// is self-contained: a worker can process it without any other lookup.
type NotificationMessage struct {
	MessageID      string           `json:"messageId"`
	CorrelationID  string           `json:"correlationId,omitempty"`
	RecipientName  string           `json:"recipientName,omitempty"`
	RecipientPhone string           `json:"recipientPhone,omitempty"`
	RecipientEmail string           `json:"recipientEmail,omitempty"`
	Template       string           `json:"template"`
	Data           map[string]any   `json:"data,omitempty"`
	Channels       []domain.Channel `json:"channels"`
	Country        string           `json:"country,omitempty"`
	Priority       domain.Priority  `json:"priority"`
}

func (m NotificationMessage) Validate() error {
	if strings.TrimSpace(m.MessageID) == "" {
		return fmt.Errorf("messageId is required")
	}
	if strings.TrimSpace(m.Template) == "" {
		return fmt.Errorf("template is required")
	}
	if len(m.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}
	for _, channel := range m.Channels {
		if !channel.IsValid() {
			return fmt.Errorf("invalid channel %q", channel)
		}
	}
	if strings.TrimSpace(m.RecipientPhone) == "" && strings.TrimSpace(m.RecipientEmail) == "" {
		return fmt.Errorf("recipient phone or email is required")
	}
	if !m.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", m.Priority)
	}
	return nil
}
