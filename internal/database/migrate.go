package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the API uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.MenuItem{},
		&models.Discount{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderLine{},
		&models.LoyaltyEntry{},
		&models.FavoriteOrder{},
		&models.Newsletter{},
		&models.UserSubscription{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed fills an empty catalog with a default store and menu
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	return db.Transaction(func(tx *gorm.DB) error {
		store := models.Store{Name: "Teezy Coffee", Address: "1 Main Street", WorkingHours: "08:00-22:00"}
		if err := tx.Create(&store).Error; err != nil {
			return err
		}
		items := []models.MenuItem{
			{Name: "Cappuccino", Description: "Double shot with steamed milk", Price: decimal.RequireFromString("250.00"), Category: "coffee", IsAvailable: true},
			{Name: "Flat White", Description: "Ristretto with microfoam", Price: decimal.RequireFromString("280.00"), Category: "coffee", IsAvailable: true},
			{Name: "Croissant", Description: "Butter croissant", Price: decimal.RequireFromString("180.00"), Category: "bakery", IsAvailable: true},
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		log.WithField("items", len(items)).Info("Database seeded successfully")
		return nil
	})
}
