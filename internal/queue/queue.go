// Package queue provides the asynchronous intake path: accepted
// notification requests are published to RabbitMQ and drained by worker
// processes.
package queue

import (
	"context"

	"github.com/agribuddy/notify-engine/internal/domain"
)

const (
	// WorkQueueName is the single notification work queue.
	WorkQueueName = "notifications"

	// DLQName receives messages rejected as unprocessable.
	DLQName = "dlq.notifications"

	// queueMaxPriority is the RabbitMQ x-max-priority value for the work
	// queue.
	queueMaxPriority int32 = 3
)

// Publisher publishes notification messages to the work queue.
type Publisher interface {
	Publish(ctx context.Context, msg NotificationMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg NotificationMessage) error

// Consumer drains the work queue, invoking the handler per message.
type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
	Close() error
}

// PriorityValue maps domain priority to RabbitMQ message priority.
func PriorityValue(priority domain.Priority) uint8 {
	switch priority {
	case domain.PriorityHigh:
		return 3
	case domain.PriorityNormal:
		return 2
	case domain.PriorityLow:
		return 1
	default:
		return 0
	}
}
