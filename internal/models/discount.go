package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is a redeemable promo code. Exactly one of Percentage or Value is set.
type Discount struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Code       string           `gorm:"uniqueIndex;not null" json:"code"`
	Percentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"percentage"`
	Value      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"value"`
	ValidFrom  *Date            `json:"valid_from"`
	ValidTo    *Date            `json:"valid_to"`
	IsActive   bool             `gorm:"not null" json:"is_active"`
	UsageLimit *int             `json:"usage_limit"`
	UsedCount  int              `gorm:"not null;default:0" json:"used_count"`
}

// NormalizeCode returns the canonical (upper case) form of a discount code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the discount invariants. It is applied on every write path.
func (d *Discount) Validate() error {
	if d.Code == "" {
		return NewValidationError(ErrDiscountInvalidData, "code is required")
	}
	pct := d.Percentage != nil
	val := d.Value != nil
	if !pct && !val {
		return NewValidationError(ErrDiscountInvalidData, "either percentage or value must be set")
	}
	if pct && val {
		return NewValidationError(ErrDiscountInvalidData, "percentage and value are mutually exclusive")
	}
	if pct && (d.Percentage.IsNegative() || d.Percentage.GreaterThan(hundred)) {
		return NewValidationError(ErrDiscountInvalidData, "percentage must be between 0 and 100")
	}
	if val && d.Value.IsNegative() {
		return NewValidationError(ErrDiscountInvalidData, "value must not be negative")
	}
	if d.ValidFrom != nil && d.ValidTo != nil && time.Time(*d.ValidTo).Before(time.Time(*d.ValidFrom)) {
		return NewValidationError(ErrDiscountInvalidData, "valid_to must not be before valid_from")
	}
	if d.UsageLimit != nil && *d.UsageLimit < 0 {
		return NewValidationError(ErrDiscountInvalidData, "usage_limit must not be negative")
	}
	if d.UsageLimit != nil && d.UsedCount > *d.UsageLimit {
		return NewValidationError(ErrDiscountInvalidData, "usage_limit is below the current used_count")
	}
	return nil
}

// Amount computes the discount for a subtotal. The result never exceeds the subtotal.
func (d *Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch {
	case d.Percentage != nil:
		amount = subtotal.Mul(*d.Percentage).Div(hundred).Round(2)
	case d.Value != nil:
		amount = decimal.Min(*d.Value, subtotal)
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// Exhausted reports whether the usage ceiling has been reached
func (d *Discount) Exhausted() bool {
	return d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit
}
