package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paybridge/internal/domain/order"
	"paybridge/internal/infrastructure/persistence/mappers"
	"paybridge/internal/infrastructure/persistence/models"
	apperrors "paybridge/internal/shared/errors"
)

// OrderArchiveRepository persists committed orders.
type OrderArchiveRepository interface {
	Save(ctx context.Context, o *order.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*order.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*order.Order, error)
}

type orderArchiveRepository struct {
	db     *gorm.DB
	mapper mappers.CommittedOrderMapper
}

func NewOrderArchiveRepository(db *gorm.DB) OrderArchiveRepository {
	return &orderArchiveRepository{
		db:     db,
		mapper: mappers.NewCommittedOrderMapper(),
	}
}

// Save upserts the archive row for a committed order. Callback redelivery
// races make the same order id possible twice; the later write wins on the
// unique order id.
func (r *orderArchiveRepository) Save(ctx context.Context, o *order.Order) error {
	model, err := r.mapper.ToModel(o)
	if err != nil {
		return fmt.Errorf("failed to map order for archive: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to archive order %s: %w", o.ID(), err)
	}

	return nil
}

func (r *orderArchiveRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var model models.CommittedOrderModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("archived order not found", orderID)
		}
		return nil, fmt.Errorf("failed to load archived order %s: %w", orderID, err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *orderArchiveRepository) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []*models.CommittedOrderModel
	if err := r.db.WithContext(ctx).
		Order("committed_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list archived orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(rows))
	for _, row := range rows {
		entity, err := r.mapper.ToEntity(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, entity)
	}

	return orders, nil
}
