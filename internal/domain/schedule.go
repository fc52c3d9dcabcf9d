package domain

import "time"

// ScheduleStatus is the lifecycle state of a scheduled message.
type ScheduleStatus string

const (
	// SchedulePending means the message is waiting for its send time.
	SchedulePending ScheduleStatus = "PENDING"
	// ScheduleQueued means the message has been handed to the work queue.
	ScheduleQueued ScheduleStatus = "QUEUED"
)

// ScheduledMessage is a notification stored for future delivery. At send
// time it is published to the work queue unchanged; the payload carries
// everything a worker needs.
type ScheduledMessage struct {
	ID             string
	CorrelationID  string
	RecipientName  string
	RecipientPhone string
	RecipientEmail string
	Template       string
	Data           map[string]any
	Channels       []Channel
	Country        string
	Priority       Priority
	SendAt         time.Time
	Status         ScheduleStatus
	CreatedAt      time.Time
}
