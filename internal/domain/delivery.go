package domain

import "time"

// DeliveryRecord is one persisted per-channel delivery attempt. The log is
// best-effort: a storage failure never fails the send that produced it.
type DeliveryRecord struct {
	ID            string
	CorrelationID string
	Recipient     string
	Channel       Channel
	Template      string
	Provider      string
	MessageID     string
	Cost          string
	Outcome       Outcome
	ErrorMessage  string
	CreatedAt     time.Time
}
