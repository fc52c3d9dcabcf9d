// Package repository persists the delivery audit log.
package repository

import (
	"time"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// DeliveryRecordModel is the persistence model for the deliveries table.
type DeliveryRecordModel struct {
	ID            string          `gorm:"type:uuid;primaryKey"`
	CorrelationID string          `gorm:"type:varchar(36);not null"`
	Recipient     string          `gorm:"type:varchar(255);not null"`
	Channel       domain.Channel  `gorm:"type:varchar(10);not null"`
	Template      string          `gorm:"type:varchar(100);not null"`
	Provider      string          `gorm:"type:varchar(50)"`
	MessageID     string          `gorm:"type:varchar(255)"`
	Cost          string          `gorm:"type:varchar(50)"`
	Outcome       domain.Outcome  `gorm:"type:varchar(20);not null"`
	ErrorMessage  string          `gorm:"type:text"`
	CreatedAt     time.Time
}

func (DeliveryRecordModel) TableName() string {
	return "deliveries"
}

func deliveryModelFromDomain(r *domain.DeliveryRecord) *DeliveryRecordModel {
	if r == nil {
		return nil
	}

	return &DeliveryRecordModel{
		ID:            r.ID,
		CorrelationID: r.CorrelationID,
		Recipient:     r.Recipient,
		Channel:       r.Channel,
		Template:      r.Template,
		Provider:      r.Provider,
		MessageID:     r.MessageID,
		Cost:          r.Cost,
		Outcome:       r.Outcome,
		ErrorMessage:  r.ErrorMessage,
		CreatedAt:     r.CreatedAt,
	}
}

func deliveryModelToDomain(m *DeliveryRecordModel) *domain.DeliveryRecord {
	if m == nil {
		return nil
	}

	return &domain.DeliveryRecord{
		ID:            m.ID,
		CorrelationID: m.CorrelationID,
		Recipient:     m.Recipient,
		Channel:       m.Channel,
		Template:      m.Template,
		Provider:      m.Provider,
		MessageID:     m.MessageID,
		Cost:          m.Cost,
		Outcome:       m.Outcome,
		ErrorMessage:  m.ErrorMessage,
		CreatedAt:     m.CreatedAt,
	}
}
