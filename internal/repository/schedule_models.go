package repository

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// ScheduledMessageModel is the persistence model for the
// scheduled_messages table. Data is stored as a JSON document and the
// channel list as a comma-joined string.
type ScheduledMessageModel struct {
	ID             string                `gorm:"type:uuid;primaryKey"`
	CorrelationID  string                `gorm:"type:varchar(36)"`
	RecipientName  string                `gorm:"type:varchar(255)"`
	RecipientPhone string                `gorm:"type:varchar(20)"`
	RecipientEmail string                `gorm:"type:varchar(255)"`
	Template       string                `gorm:"type:varchar(100);not null"`
	Data           string                `gorm:"type:jsonb"`
	Channels       string                `gorm:"type:varchar(50);not null"`
	Country        string                `gorm:"type:varchar(10)"`
	Priority       domain.Priority       `gorm:"type:varchar(10);not null"`
	SendAt         time.Time             `gorm:"not null"`
	Status         domain.ScheduleStatus `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time
}

func (ScheduledMessageModel) TableName() string {
	return "scheduled_messages"
}

func scheduleModelFromDomain(s *domain.ScheduledMessage) (*ScheduledMessageModel, error) {
	if s == nil {
		return nil, nil
	}

	data := ""
	if len(s.Data) > 0 {
		raw, err := json.Marshal(s.Data)
		if err != nil {
			return nil, err
		}
		data = string(raw)
	}

	channels := make([]string, 0, len(s.Channels))
	for _, channel := range s.Channels {
		channels = append(channels, string(channel))
	}

	return &ScheduledMessageModel{
		ID:             s.ID,
		CorrelationID:  s.CorrelationID,
		RecipientName:  s.RecipientName,
		RecipientPhone: s.RecipientPhone,
		RecipientEmail: s.RecipientEmail,
		Template:       s.Template,
		Data:           data,
		Channels:       strings.Join(channels, ","),
		Country:        s.Country,
		Priority:       s.Priority,
		SendAt:         s.SendAt,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
	}, nil
}

func scheduleModelToDomain(m *ScheduledMessageModel) (*domain.ScheduledMessage, error) {
	if m == nil {
		return nil, nil
	}

	var data map[string]any
	if strings.TrimSpace(m.Data) != "" {
		if err := json.Unmarshal([]byte(m.Data), &data); err != nil {
			return nil, err
		}
	}

	var channels []domain.Channel
	for _, raw := range strings.Split(m.Channels, ",") {
		if raw == "" {
			continue
		}
		channels = append(channels, domain.Channel(raw))
	}

	return &domain.ScheduledMessage{
		ID:             m.ID,
		CorrelationID:  m.CorrelationID,
		RecipientName:  m.RecipientName,
		RecipientPhone: m.RecipientPhone,
		RecipientEmail: m.RecipientEmail,
		Template:       m.Template,
		Data:           data,
		Channels:       channels,
		Country:        m.Country,
		Priority:       m.Priority,
		SendAt:         m.SendAt,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
	}, nil
}
