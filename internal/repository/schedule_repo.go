package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// ScheduleRepository stores notifications awaiting future delivery.
type ScheduleRepository interface {
	Create(ctx context.Context, msg *domain.ScheduledMessage) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledMessage, error)
	GetDue(ctx context.Context, limit int) ([]domain.ScheduledMessage, error)
	MarkQueued(ctx context.Context, id string) (bool, error)
	MarkPending(ctx context.Context, id string) error
}

type GormScheduleRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormScheduleRepo(db *gorm.DB) *GormScheduleRepo {
	return &GormScheduleRepo{db: db, now: time.Now}
}

func (r *GormScheduleRepo) Create(ctx context.Context, msg *domain.ScheduledMessage) error {
	model, err := scheduleModelFromDomain(msg)
	if err != nil {
		return err
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = r.now()
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormScheduleRepo) GetByID(ctx context.Context, id string) (*domain.ScheduledMessage, error) {
	var model ScheduledMessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scheduleModelToDomain(&model)
}

// GetDue returns pending messages whose send time has passed, oldest
// first.
func (r *GormScheduleRepo) GetDue(ctx context.Context, limit int) ([]domain.ScheduledMessage, error) {
	var models []ScheduledMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND send_at <= ?", domain.SchedulePending, r.now()).
		Order("send_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ScheduledMessage, 0, len(models))
	for i := range models {
		msg, err := scheduleModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}

	return messages, nil
}

// MarkQueued flips a pending message to queued. Returns false when the
// message was already picked up by a concurrent scheduler scan.
func (r *GormScheduleRepo) MarkQueued(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ScheduledMessageModel{}).
		Where("id = ? AND status = ?", id, domain.SchedulePending).
		Update("status", domain.ScheduleQueued)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkPending releases a claimed message back to pending so the next
// scan retries it.
func (r *GormScheduleRepo) MarkPending(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&ScheduledMessageModel{}).
		Where("id = ? AND status = ?", id, domain.ScheduleQueued).
		Update("status", domain.SchedulePending).Error
}
