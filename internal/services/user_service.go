package services

import (
	"context"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/auth"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService interface {
	// ResolveTelegramUser returns the user for a verified Telegram identity,
	// creating it on first sight
	ResolveTelegramUser(ctx context.Context, tg *auth.TelegramUser) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	SetRole(ctx context.Context, id uint, role models.Role) error
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) ResolveTelegramUser(ctx context.Context, tg *auth.TelegramUser) (*models.User, error) {
	db := s.db.WithContext(ctx)

	candidate := models.User{
		TelegramID: tg.ID,
		Username:   tg.Username,
		FirstName:  tg.FirstName,
		LastName:   tg.LastName,
		Role:       models.RoleCustomer,
	}
	// Concurrent first logins race on the unique telegram_id; the loser inserts nothing
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		return nil, persistenceError(err)
	}

	var user models.User
	if err := db.Where("telegram_id = ?", tg.ID).First(&user).Error; err != nil {
		return nil, notFoundOr(err, models.ErrUserNotFound, "user not found")
	}

	// Keep the profile in step with Telegram; points and role are never touched here
	if user.Username != tg.Username || user.FirstName != tg.FirstName || user.LastName != tg.LastName {
		err := db.Model(&user).Select("username", "first_name", "last_name").Updates(models.User{
			Username:  tg.Username,
			FirstName: tg.FirstName,
			LastName:  tg.LastName,
		}).Error
		if err != nil {
			return nil, persistenceError(err)
		}
		user.Username, user.FirstName, user.LastName = tg.Username, tg.FirstName, tg.LastName
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrUserNotFound, "user not found")
	}
	return &user, nil
}

func (s *userService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, notFoundOr(err, models.ErrUserNotFound, "user not found")
	}
	return &user, nil
}

func (s *userService) SetRole(ctx context.Context, id uint, role models.Role) error {
	if !role.Valid() {
		return models.NewValidationError(models.ErrBadRequest, "unknown role")
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(models.ErrUserNotFound, "user not found")
	}
	return nil
}
