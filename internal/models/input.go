package models

import (
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// MenuItemInput is the body of a menu item creation. Items are on sale
// unless is_available is sent as false.
type MenuItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	IsAvailable mo.Option[bool] `json:"is_available"`
}

func (in MenuItemInput) MenuItem() MenuItem {
	return MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		IsAvailable: in.IsAvailable.OrElse(true),
	}
}

// DiscountInput is the body of a discount creation. Omitting is_active creates an active code.
type DiscountInput struct {
	Code       string           `json:"code"`
	Percentage *decimal.Decimal `json:"percentage"`
	Value      *decimal.Decimal `json:"value"`
	ValidFrom  *Date            `json:"valid_from"`
	ValidTo    *Date            `json:"valid_to"`
	IsActive   mo.Option[bool]  `json:"is_active"`
	UsageLimit *int             `json:"usage_limit"`
}

func (in DiscountInput) Discount() Discount {
	return Discount{
		Code:       in.Code,
		Percentage: in.Percentage,
		Value:      in.Value,
		ValidFrom:  in.ValidFrom,
		ValidTo:    in.ValidTo,
		IsActive:   in.IsActive.OrElse(true),
		UsageLimit: in.UsageLimit,
	}
}

// PromotionInput is the body of a promotion creation. Omitting is_active publishes it.
type PromotionInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	StartDate   Date            `json:"start_date"`
	EndDate     Date            `json:"end_date"`
	IsActive    mo.Option[bool] `json:"is_active"`
}

func (in PromotionInput) Promotion() Promotion {
	return Promotion{
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsActive:    in.IsActive.OrElse(true),
	}
}
