package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/queue"
)

const (
	defaultSchedulerScanInterval = 15 * time.Second
	defaultSchedulerScanLimit    = 100
)

// ScheduleStore is the slice of the schedule repository the scheduler
// needs.
type ScheduleStore interface {
	GetDue(ctx context.Context, limit int) ([]domain.ScheduledMessage, error)
	MarkQueued(ctx context.Context, id string) (bool, error)
	MarkPending(ctx context.Context, id string) error
}

// Scheduler periodically moves due scheduled messages onto the work
// queue. It never delivers anything itself; the worker pool picks the
// published messages up like any other async request.
type Scheduler struct {
	schedules ScheduleStore
	publisher queue.Publisher
	logger    *zap.Logger
	interval  time.Duration
	limit     int
}

func NewScheduler(
	schedules ScheduleStore,
	publisher queue.Publisher,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*Scheduler, error) {
	if schedules == nil {
		return nil, fmt.Errorf("schedule store is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("queue publisher is required")
	}
	if interval <= 0 {
		interval = defaultSchedulerScanInterval
	}
	if limit <= 0 {
		limit = defaultSchedulerScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		schedules: schedules,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		limit:     limit,
	}, nil
}

// Start scans immediately, then on every tick, until the context ends.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.scanDue(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("scheduler initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scanDue(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("scheduler scan failed", zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) scanDue(ctx context.Context) error {
	due, err := s.schedules.GetDue(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch due scheduled messages: %w", err)
	}

	for i := range due {
		scheduled := due[i]
		msg := queue.NotificationMessage{
			MessageID:      scheduled.ID,
			CorrelationID:  scheduled.CorrelationID,
			RecipientName:  scheduled.RecipientName,
			RecipientPhone: scheduled.RecipientPhone,
			RecipientEmail: scheduled.RecipientEmail,
			Template:       scheduled.Template,
			Data:           scheduled.Data,
			Channels:       scheduled.Channels,
			Country:        scheduled.Country,
			Priority:       scheduled.Priority,
		}

		// Claim before publishing so a concurrent scan cannot publish
		// the same message twice. A failed publish releases the claim
		// and the next scan retries.
		claimed, err := s.schedules.MarkQueued(ctx, scheduled.ID)
		if err != nil {
			s.logger.Error("failed to claim scheduled message",
				zap.String("scheduleId", scheduled.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			s.logger.Info("scheduled message already picked up",
				zap.String("scheduleId", scheduled.ID),
			)
			continue
		}

		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.logger.Error("failed to enqueue scheduled message",
				zap.String("scheduleId", scheduled.ID),
				zap.Error(err),
			)
			if releaseErr := s.schedules.MarkPending(ctx, scheduled.ID); releaseErr != nil {
				s.logger.Error("failed to release scheduled message",
					zap.String("scheduleId", scheduled.ID),
					zap.Error(releaseErr),
				)
			}
			continue
		}
	}

	return nil
}
