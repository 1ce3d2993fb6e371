package model

import (
	"time"

	"github.com/google/uuid"
)

// Action defines the kind of door-opening action an order code authorizes
type Action string

const (
	// ActionPickup represents the one-time collection of an order
	ActionPickup Action = "pickup"
	// ActionOpening represents repeated access within a booked time window
	ActionOpening Action = "opening"
)

// Order is the local replica of an order held by the remote authority.
// PickupTime is nil until the order has been collected. The opening fields
// are nil until a booking window has been configured remotely.
type Order struct {
	ID           uint       `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	CustomerName string     `json:"customer_name"`
	OrderDate    string     `json:"order_date"`
	OrderTotal   string     `json:"order_total"`
	PickupCode   string     `gorm:"index" json:"pickup_code"`
	PickupTime   *time.Time `json:"pickup_time"`
	OpeningCode  *string    `gorm:"index" json:"opening_code"`
	OpeningStart *time.Time `json:"start_time"`
	OpeningEnd   *time.Time `json:"end_time"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderDoor maps an order to one of its fulfillment doors. Rows are replaced
// wholesale on every sync of the owning order, never patched in place.
type OrderDoor struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"index;not null" json:"order_id"`
	ProductName string `json:"product_name"`
	Door        string `json:"door"`
}

// PendingAction is an outbox entry for a completed door action whose remote
// notification has not yet succeeded. Rows are never deleted; the drainer
// flips Resolved once the authority has acknowledged the action. ActionTime
// is when the doors actually opened, not when the report was attempted.
type PendingAction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	Action     Action    `gorm:"not null" json:"action"`
	ActionTime time.Time `gorm:"not null" json:"action_time"`
	Resolved   bool      `gorm:"index;not null;default:false" json:"resolved"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
