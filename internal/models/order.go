package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusNew OrderStatus = "new"
)

// Order is immutable once created apart from its status.
// TotalPrice is the post-discount amount.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index;not null" json:"user_id"`
	User       *User           `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	StoreID    uint            `gorm:"index;not null" json:"store_id"`
	Status     OrderStatus     `gorm:"type:varchar(32);not null;default:'new'" json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	DiscountID *uint           `json:"-"`
	PickupTime time.Time       `gorm:"not null" json:"pickup_time"`
	CreatedAt  time.Time       `json:"created_at"`
	Lines      []OrderLine     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderLine belongs to exactly one order. PriceAtPurchase is frozen at order time.
type OrderLine struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"index;not null" json:"-"`
	MenuItemID      uint            `gorm:"index;not null" json:"menu_item_id"`
	MenuItem        *MenuItem       `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price_at_purchase"`
}

// LineTotal is the line's quantity times its frozen price
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
