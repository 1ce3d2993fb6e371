package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/pkg/errors"
)

// PendingActionRepository defines the interface for the offline-action outbox
type PendingActionRepository interface {
	Record(ctx context.Context, orderID uint, action model.Action, when time.Time) (*model.PendingAction, error)
	ListUnresolved(ctx context.Context) ([]model.PendingAction, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
	HasRecentUnresolved(ctx context.Context, orderID uint, since time.Duration) (bool, error)
	List(ctx context.Context, limit int) ([]model.PendingAction, error)
	CountUnresolved(ctx context.Context) (int64, error)
}

// pendingActionRepository implements PendingActionRepository
type pendingActionRepository struct {
	db *gorm.DB
}

// NewPendingActionRepository creates a new pending action repository
func NewPendingActionRepository(db *gorm.DB) PendingActionRepository {
	return &pendingActionRepository{db: db}
}

// Record inserts a new unresolved outbox entry for a completed action
func (r *pendingActionRepository) Record(ctx context.Context, orderID uint, action model.Action, when time.Time) (*model.PendingAction, error) {
	entry := &model.PendingAction{
		ID:         uuid.New(),
		OrderID:    orderID,
		Action:     action,
		ActionTime: when,
		Resolved:   false,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, errors.Wrap(err, "failed to record pending action")
	}
	return entry, nil
}

// ListUnresolved returns all outbox entries still awaiting remote delivery,
// oldest first.
func (r *pendingActionRepository) ListUnresolved(ctx context.Context) ([]model.PendingAction, error) {
	var actions []model.PendingAction
	err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("action_time").
		Find(&actions).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unresolved pending actions")
	}
	return actions, nil
}

// MarkResolved flags an outbox entry as delivered. The row is kept as an
// audit record.
func (r *pendingActionRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&model.PendingAction{}).
		Where("id = ?", id).
		Update("resolved", true).Error
	return errors.Wrap(err, "failed to mark pending action resolved")
}

// HasRecentUnresolved reports whether the order has an undelivered action
// newer than the given duration. Such orders are locked out of code entry
// until the outbox drains or the entry ages past the window.
func (r *pendingActionRepository) HasRecentUnresolved(ctx context.Context, orderID uint, since time.Duration) (bool, error) {
	cutoff := time.Now().Add(-since)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PendingAction{}).
		Where("order_id = ? AND resolved = ? AND action_time > ?", orderID, false, cutoff).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check recent unresolved actions")
	}
	return count > 0, nil
}

// List returns the newest outbox entries, resolved or not, for the audit API
func (r *pendingActionRepository) List(ctx context.Context, limit int) ([]model.PendingAction, error) {
	var actions []model.PendingAction
	err := r.db.WithContext(ctx).
		Order("action_time DESC").
		Limit(limit).
		Find(&actions).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending actions")
	}
	return actions, nil
}

// CountUnresolved returns the number of entries awaiting delivery
func (r *pendingActionRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PendingAction{}).
		Where("resolved = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count unresolved pending actions")
	}
	return count, nil
}
