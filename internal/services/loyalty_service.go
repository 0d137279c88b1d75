package services

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyBalance is the cached point total of a user
type LoyaltyBalance struct {
	UserID uint  `json:"user_id"`
	Points int64 `json:"points"`
}

type LoyaltyService interface {
	Balance(ctx context.Context, userID uint) (*LoyaltyBalance, error)
	// History lists the user's ledger entries, newest first
	History(ctx context.Context, userID uint) ([]models.LoyaltyEntry, error)
	// SaveFavorite replaces the user's favorite order snapshot
	SaveFavorite(ctx context.Context, userID uint, details datatypes.JSON, name *string) (*models.FavoriteOrder, error)
	// GetFavorite returns nil without error when the user saved nothing
	GetFavorite(ctx context.Context, userID uint) (*models.FavoriteOrder, error)
}

type loyaltyService struct {
	db *gorm.DB
}

func NewLoyaltyService(db *gorm.DB) LoyaltyService {
	return &loyaltyService{db: db}
}

func (s *loyaltyService) Balance(ctx context.Context, userID uint) (*LoyaltyBalance, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "points").First(&user, userID).Error; err != nil {
		return nil, notFoundOr(err, models.ErrUserNotFound, "user not found")
	}
	return &LoyaltyBalance{UserID: user.ID, Points: user.Points}, nil
}

func (s *loyaltyService) History(ctx context.Context, userID uint) ([]models.LoyaltyEntry, error) {
	entries := []models.LoyaltyEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, persistenceError(err)
	}
	return entries, nil
}

func (s *loyaltyService) SaveFavorite(ctx context.Context, userID uint, details datatypes.JSON, name *string) (*models.FavoriteOrder, error) {
	if len(details) == 0 || !gjson.ValidBytes(details) {
		return nil, models.NewValidationError(models.ErrBadRequest, "order_details must be valid JSON")
	}

	favorite := models.FavoriteOrder{
		UserID:       userID,
		OrderDetails: details,
		Name:         name,
		UpdatedAt:    time.Now().UTC(),
	}
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_details", "name", "updated_at"}),
	}).Create(&favorite).Error
	if err != nil {
		return nil, persistenceError(err)
	}

	var stored models.FavoriteOrder
	if err := db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, persistenceError(err)
	}
	return &stored, nil
}

func (s *loyaltyService) GetFavorite(ctx context.Context, userID uint) (*models.FavoriteOrder, error) {
	var favorite models.FavoriteOrder
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&favorite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	return &favorite, nil
}
