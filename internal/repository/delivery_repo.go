package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agribuddy/notify-engine/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ListParams filters the delivery log.
type ListParams struct {
	Recipient *string
	Channel   *domain.Channel
	Outcome   *domain.Outcome
	Template  *string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

type DeliveryRepository interface {
	Record(ctx context.Context, record *domain.DeliveryRecord) error
	GetByID(ctx context.Context, id string) (*domain.DeliveryRecord, error)
	List(ctx context.Context, params ListParams) ([]domain.DeliveryRecord, int64, error)
}

type GormDeliveryRepo struct {
	db *gorm.DB
}

func NewGormDeliveryRepo(db *gorm.DB) *GormDeliveryRepo {
	return &GormDeliveryRepo{db: db}
}

func (r *GormDeliveryRepo) Record(ctx context.Context, record *domain.DeliveryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: delivery record is required", domain.ErrValidation)
	}

	model := deliveryModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert delivery record: %w", err)
	}
	*record = *deliveryModelToDomain(model)
	return nil
}

func (r *GormDeliveryRepo) GetByID(ctx context.Context, id string) (*domain.DeliveryRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: delivery id is required", domain.ErrValidation)
	}

	var model DeliveryRecordModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: delivery %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load delivery record: %w", err)
	}

	return deliveryModelToDomain(&model), nil
}

func (r *GormDeliveryRepo) List(ctx context.Context, params ListParams) ([]domain.DeliveryRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&DeliveryRecordModel{})

	if params.Recipient != nil {
		query = query.Where("recipient = ?", strings.TrimSpace(*params.Recipient))
	}
	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}
	if params.Outcome != nil {
		query = query.Where("outcome = ?", *params.Outcome)
	}
	if params.Template != nil {
		query = query.Where("template = ?", strings.TrimSpace(*params.Template))
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery records: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var models []DeliveryRecordModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list delivery records: %w", err)
	}

	records := make([]domain.DeliveryRecord, 0, len(models))
	for i := range models {
		records = append(records, *deliveryModelToDomain(&models[i]))
	}

	return records, total, nil
}
