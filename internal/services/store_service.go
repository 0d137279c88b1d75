package services

import (
	"context"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"gorm.io/gorm"
)

type StoreService interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	GetStore(ctx context.Context, id uint) (*models.Store, error)
}

type storeService struct {
	db *gorm.DB
}

func NewStoreService(db *gorm.DB) StoreService {
	return &storeService{db: db}
}

func (s *storeService) ListStores(ctx context.Context) ([]models.Store, error) {
	stores := []models.Store{}
	if err := s.db.WithContext(ctx).Order("id").Find(&stores).Error; err != nil {
		return nil, persistenceError(err)
	}
	return stores, nil
}

func (s *storeService) GetStore(ctx context.Context, id uint) (*models.Store, error) {
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrStoreNotFound, "store not found")
	}
	return &store, nil
}
