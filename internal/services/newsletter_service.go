package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BroadcastResult reports a queued newsletter
type BroadcastResult struct {
	Newsletter models.Newsletter `json:"newsletter"`
	Recipients int               `json:"recipients"`
}

type NewsletterService interface {
	// Send records the newsletter and queues one delivery per subscribed user
	Send(ctx context.Context, senderID uint, title, message string) (*BroadcastResult, error)
	// GetSubscription reports the user's preference; users are subscribed by default
	GetSubscription(ctx context.Context, userID uint) (*models.UserSubscription, error)
	UpdateSubscription(ctx context.Context, userID uint, subscribed bool) (*models.UserSubscription, error)
}

type newsletterService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewNewsletterService(db *gorm.DB, dispatcher *Dispatcher) NewsletterService {
	return &newsletterService{db: db, dispatcher: dispatcher}
}

type recipient struct {
	ID         uint
	TelegramID int64
}

func (s *newsletterService) Send(ctx context.Context, senderID uint, title, message string) (*BroadcastResult, error) {
	title, message = strings.TrimSpace(title), strings.TrimSpace(message)
	if title == "" || message == "" {
		return nil, models.NewValidationError(models.ErrBadRequest, "title and message are required")
	}

	db := s.db.WithContext(ctx)
	var recipients []recipient
	err := db.Model(&models.User{}).
		Select("users.id, users.telegram_id").
		Joins("LEFT JOIN user_subscriptions ON user_subscriptions.user_id = users.id").
		Where("user_subscriptions.user_id IS NULL OR user_subscriptions.subscribed = ?", true).
		Order("users.id").
		Scan(&recipients).Error
	if err != nil {
		return nil, persistenceError(err)
	}
	if len(recipients) == 0 {
		return nil, models.NewValidationError(models.ErrNoSubscribers, "no subscribed users")
	}

	newsletter := models.Newsletter{Title: title, Message: message, SentBy: senderID}
	if err := db.Create(&newsletter).Error; err != nil {
		return nil, persistenceError(err)
	}

	batch := make([]Delivery, 0, len(recipients))
	for _, r := range recipients {
		batch = append(batch, Delivery{
			NewsletterID: newsletter.ID,
			UserID:       r.ID,
			TelegramID:   r.TelegramID,
			Title:        title,
			Message:      message,
		})
	}
	// The broadcast row stays committed even if nothing can be queued
	if err := s.dispatcher.Submit(batch); err != nil {
		log.WithError(err).WithField("newsletter_id", newsletter.ID).Warn("Newsletter deliveries not queued")
	}

	log.WithFields(log.Fields{
		"newsletter_id": newsletter.ID,
		"recipients":    len(batch),
		"sent_by":       senderID,
	}).Info("Newsletter queued")
	return &BroadcastResult{Newsletter: newsletter, Recipients: len(batch)}, nil
}

func (s *newsletterService) GetSubscription(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserSubscription{UserID: userID, Subscribed: true}, nil
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	return &sub, nil
}

func (s *newsletterService) UpdateSubscription(ctx context.Context, userID uint, subscribed bool) (*models.UserSubscription, error) {
	sub := models.UserSubscription{UserID: userID, Subscribed: subscribed, SubscribedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subscribed", "subscribed_at"}),
	}).Create(&sub).Error
	if err != nil {
		return nil, persistenceError(err)
	}
	return &sub, nil
}
