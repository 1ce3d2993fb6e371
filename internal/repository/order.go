package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/db"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/pkg/errors"
)

// OrderRepository defines the interface for the local order replica
type OrderRepository interface {
	Upsert(ctx context.Context, order *model.Order) error
	ReplaceDoors(ctx context.Context, orderID uint, doors []model.OrderDoor) error
	SyncOrder(ctx context.Context, order *model.Order, doors []model.OrderDoor) error
	FindByCode(ctx context.Context, code string) (*model.Order, error)
	DoorsForOrder(ctx context.Context, orderID uint) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// orderRepository implements OrderRepository
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// mergeAssignments is the on-conflict merge policy for synced orders. The
// remote authority is authoritative for the customer, date, total and pickup
// fields, so those are overwritten unconditionally. The opening fields are
// only taken when the incoming value is non-null: a partial payload must
// never erase a window the kiosk has already learned.
func mergeAssignments() clause.Set {
	return clause.Assignments(map[string]interface{}{
		"customer_name": gorm.Expr("excluded.customer_name"),
		"order_date":    gorm.Expr("excluded.order_date"),
		"order_total":   gorm.Expr("excluded.order_total"),
		"pickup_code":   gorm.Expr("excluded.pickup_code"),
		"pickup_time":   gorm.Expr("excluded.pickup_time"),
		"opening_code":  gorm.Expr("COALESCE(excluded.opening_code, orders.opening_code)"),
		"opening_start": gorm.Expr("COALESCE(excluded.opening_start, orders.opening_start)"),
		"opening_end":   gorm.Expr("COALESCE(excluded.opening_end, orders.opening_end)"),
		"updated_at":    gorm.Expr("excluded.updated_at"),
	})
}

func upsertOrder(tx *gorm.DB, order *model.Order) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: mergeAssignments(),
	}).Create(order).Error
}

func replaceDoors(tx *gorm.DB, orderID uint, doors []model.OrderDoor) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderDoor{}).Error; err != nil {
		return err
	}
	for i := range doors {
		doors[i].ID = 0
		doors[i].OrderID = orderID
	}
	if len(doors) == 0 {
		return nil
	}
	return tx.Create(&doors).Error
}

// Upsert inserts or merges a single order row
func (r *orderRepository) Upsert(ctx context.Context, order *model.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertOrder(tx, order)
	})
	return errors.Wrap(err, "failed to upsert order")
}

// ReplaceDoors swaps out the full door mapping for an order
func (r *orderRepository) ReplaceDoors(ctx context.Context, orderID uint, doors []model.OrderDoor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceDoors(tx, orderID, doors)
	})
	return errors.Wrap(err, "failed to replace order doors")
}

// SyncOrder applies an order and its door mapping as one atomic unit. A
// reader can never observe the order row updated with stale door rows.
func (r *orderRepository) SyncOrder(ctx context.Context, order *model.Order, doors []model.OrderDoor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertOrder(tx, order); err != nil {
			return err
		}
		return replaceDoors(tx, order.ID, doors)
	})
	return errors.Wrap(err, "failed to sync order")
}

// FindByCode looks up an order whose pickup or opening code matches the given
// code, ignoring case and surrounding whitespace.
func (r *orderRepository) FindByCode(ctx context.Context, code string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(pickup_code)) = LOWER(TRIM(?)) OR LOWER(TRIM(opening_code)) = LOWER(TRIM(?))", code, code).
		First(&order).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find order by code")
	}
	return &order, nil
}

// DoorsForOrder returns the distinct doors holding items of an order
func (r *orderRepository) DoorsForOrder(ctx context.Context, orderID uint) ([]string, error) {
	var doors []string
	err := r.db.WithContext(ctx).
		Model(&model.OrderDoor{}).
		Distinct("door").
		Where("order_id = ?", orderID).
		Order("door").
		Pluck("door", &doors).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list doors for order")
	}
	return doors, nil
}

// Count returns the number of orders in the local replica
func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}
	return count, nil
}
