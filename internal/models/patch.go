package models

import (
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// MenuItemPatch lists the fields an admin may change on a menu item.
// Absent fields are left untouched.
type MenuItemPatch struct {
	Name        mo.Option[string]          `json:"name"`
	Description mo.Option[string]          `json:"description"`
	Price       mo.Option[decimal.Decimal] `json:"price"`
	Category    mo.Option[string]          `json:"category"`
	ImageURL    mo.Option[string]          `json:"image_url"`
	IsAvailable mo.Option[bool]            `json:"is_available"`
}

// Apply copies the present fields onto item and re-validates it
func (p MenuItemPatch) Apply(item *MenuItem) error {
	if v, ok := p.Name.Get(); ok {
		item.Name = v
	}
	if v, ok := p.Description.Get(); ok {
		item.Description = v
	}
	if v, ok := p.Price.Get(); ok {
		item.Price = v
	}
	if v, ok := p.Category.Get(); ok {
		item.Category = v
	}
	if v, ok := p.ImageURL.Get(); ok {
		item.ImageURL = v
	}
	if v, ok := p.IsAvailable.Get(); ok {
		item.IsAvailable = v
	}
	return item.Validate()
}

// DiscountPatch lists the fields an admin may change on a discount.
// Setting Percentage clears Value and the other way round, keeping the two exclusive.
type DiscountPatch struct {
	Code       mo.Option[string]          `json:"code"`
	Percentage mo.Option[decimal.Decimal] `json:"percentage"`
	Value      mo.Option[decimal.Decimal] `json:"value"`
	ValidFrom  mo.Option[Date]            `json:"valid_from"`
	ValidTo    mo.Option[Date]            `json:"valid_to"`
	IsActive   mo.Option[bool]            `json:"is_active"`
	UsageLimit mo.Option[int]             `json:"usage_limit"`
}

// Apply copies the present fields onto d and re-validates it
func (p DiscountPatch) Apply(d *Discount) error {
	if p.Percentage.IsPresent() && p.Value.IsPresent() {
		return NewValidationError(ErrDiscountInvalidData, "percentage and value are mutually exclusive")
	}
	if v, ok := p.Code.Get(); ok {
		d.Code = NormalizeCode(v)
	}
	if v, ok := p.Percentage.Get(); ok {
		d.Percentage = &v
		d.Value = nil
	}
	if v, ok := p.Value.Get(); ok {
		d.Value = &v
		d.Percentage = nil
	}
	if v, ok := p.ValidFrom.Get(); ok {
		d.ValidFrom = &v
	}
	if v, ok := p.ValidTo.Get(); ok {
		d.ValidTo = &v
	}
	if v, ok := p.IsActive.Get(); ok {
		d.IsActive = v
	}
	if v, ok := p.UsageLimit.Get(); ok {
		d.UsageLimit = &v
	}
	return d.Validate()
}

// PromotionPatch lists the fields an admin may change on a promotion
type PromotionPatch struct {
	Title       mo.Option[string] `json:"title"`
	Description mo.Option[string] `json:"description"`
	ImageURL    mo.Option[string] `json:"image_url"`
	StartDate   mo.Option[Date]   `json:"start_date"`
	EndDate     mo.Option[Date]   `json:"end_date"`
	IsActive    mo.Option[bool]   `json:"is_active"`
}

// Apply copies the present fields onto promo and re-validates it
func (p PromotionPatch) Apply(promo *Promotion) error {
	if v, ok := p.Title.Get(); ok {
		promo.Title = v
	}
	if v, ok := p.Description.Get(); ok {
		promo.Description = v
	}
	if v, ok := p.ImageURL.Get(); ok {
		promo.ImageURL = v
	}
	if v, ok := p.StartDate.Get(); ok {
		promo.StartDate = v
	}
	if v, ok := p.EndDate.Get(); ok {
		promo.EndDate = v
	}
	if v, ok := p.IsActive.Get(); ok {
		promo.IsActive = v
	}
	return promo.Validate()
}
