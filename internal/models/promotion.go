package models

import "time"

// Promotion is a display-only campaign with no pricing effect
type Promotion struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	StartDate   Date   `gorm:"not null" json:"start_date"`
	EndDate     Date   `gorm:"not null" json:"end_date"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

// Validate checks the promotion invariants
func (p *Promotion) Validate() error {
	if p.Title == "" || p.Description == "" {
		return NewValidationError(ErrPromotionInvalidData, "title and description are required")
	}
	if p.StartDate.Time().IsZero() || p.EndDate.Time().IsZero() {
		return NewValidationError(ErrPromotionInvalidData, "start_date and end_date are required")
	}
	if time.Time(p.EndDate).Before(time.Time(p.StartDate)) {
		return NewValidationError(ErrPromotionInvalidData, "end_date must not be before start_date")
	}
	return nil
}
