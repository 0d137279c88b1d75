package models

import (
	"time"
)

type OAuthToken struct {
	ID           uint      `gorm:"primaryKey"`
	ClientID     string    `gorm:"index;not null"`
	UserID       string    `gorm:"not null"`
	AccessToken  string    `gorm:"uniqueIndex;not null"`
	RefreshToken *string   `gorm:"index"` // Client credentials never issue refresh tokens
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
