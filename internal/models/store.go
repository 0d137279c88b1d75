package models

import "github.com/shopspring/decimal"

// Store is a pickup location. Orders reference one but pricing does not depend on it.
type Store struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	Name         string              `gorm:"not null" json:"name"`
	Address      string              `gorm:"not null" json:"address"`
	Phone        string              `json:"phone,omitempty"`
	WorkingHours string              `gorm:"not null" json:"working_hours"`
	Latitude     decimal.NullDecimal `gorm:"type:numeric(9,6)" json:"latitude"`
	Longitude    decimal.NullDecimal `gorm:"type:numeric(9,6)" json:"longitude"`
}
