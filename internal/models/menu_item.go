package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MenuItem is a sellable catalog entry. Its price is copied onto order lines
// at purchase time, so later edits never change historical orders.
type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category    string          `gorm:"index;not null" json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
}

// Validate checks the invariants shared by create and update
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return NewValidationError(ErrMenuItemInvalid, "name is required")
	}
	if strings.TrimSpace(m.Category) == "" {
		return NewValidationError(ErrMenuItemInvalid, "category is required")
	}
	if m.Price.IsNegative() {
		return NewValidationError(ErrMenuItemInvalid, "price must not be negative")
	}
	return nil
}
