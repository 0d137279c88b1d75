package models

import "time"

// Newsletter records a broadcast. Deliveries happen after the row is committed.
type Newsletter struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Title   string    `gorm:"not null" json:"title"`
	Message string    `gorm:"type:text;not null" json:"message"`
	SentAt  time.Time `gorm:"autoCreateTime" json:"sent_at"`
	SentBy  uint      `gorm:"index" json:"sent_by"`
}

// UserSubscription holds a user's newsletter preference. A missing row means subscribed.
type UserSubscription struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Subscribed   bool      `gorm:"not null" json:"subscribed"`
	SubscribedAt time.Time `gorm:"autoUpdateTime" json:"subscribed_at"`
}
