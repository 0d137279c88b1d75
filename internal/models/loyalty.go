package models

import (
	"time"

	"gorm.io/datatypes"
)

// LoyaltyReasonPurchase tags points earned by placing an order
const LoyaltyReasonPurchase = "purchase"

// LoyaltyEntry is an append-only ledger row. The sum of a user's entries
// always equals User.Points.
type LoyaltyEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	OrderID      *uint     `gorm:"index" json:"order_id,omitempty"`
	Order        *Order    `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	PointsEarned int64     `gorm:"not null" json:"points_earned"`
	Reason       string    `gorm:"not null" json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

func (LoyaltyEntry) TableName() string {
	return "loyalty_points"
}

// FavoriteOrder is the single saved cart snapshot of a user, overwritten on every save
type FavoriteOrder struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"-"`
	OrderDetails datatypes.JSON `gorm:"not null" json:"order_details"`
	Name         *string        `json:"name"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
