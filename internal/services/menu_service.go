package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"gorm.io/gorm"
)

// MenuService provides methods to interact with the menu catalog
type MenuService interface {
	// ListAvailable returns the items currently on sale, optionally within one category
	ListAvailable(ctx context.Context, category string) ([]models.MenuItem, error)
	// GetItem retrieves a menu item by its ID
	GetItem(ctx context.Context, id uint) (*models.MenuItem, error)
	// CreateItem stores a new menu item; names are unique
	CreateItem(ctx context.Context, item *models.MenuItem) error
	// UpdateItem applies a partial update to an existing item
	UpdateItem(ctx context.Context, id uint, patch models.MenuItemPatch) (*models.MenuItem, error)
	// DeleteItem removes an item that no order references
	DeleteItem(ctx context.Context, id uint) error
}

// menuService is the implementation of the MenuService interface
type menuService struct {
	db *gorm.DB
}

// NewMenuService creates a new instance of MenuService
func NewMenuService(db *gorm.DB) MenuService {
	return &menuService{db: db}
}

func (s *menuService) ListAvailable(ctx context.Context, category string) ([]models.MenuItem, error) {
	query := s.db.WithContext(ctx).Where("is_available = ?", true)
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}

	items := []models.MenuItem{}
	if err := query.Order("category, name").Find(&items).Error; err != nil {
		return nil, persistenceError(err)
	}
	return items, nil
}

func (s *menuService) GetItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrMenuItemNotFound, "menu item not found")
	}
	return &item, nil
}

func (s *menuService) CreateItem(ctx context.Context, item *models.MenuItem) error {
	item.ID = 0
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return conflictOr(err, models.ErrMenuItemExists, "a menu item with this name already exists")
	}
	return nil
}

func (s *menuService) UpdateItem(ctx context.Context, id uint, patch models.MenuItemPatch) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return notFoundOr(err, models.ErrMenuItemNotFound, "menu item not found")
		}
		if err := patch.Apply(&item); err != nil {
			return err
		}
		item.Name = strings.TrimSpace(item.Name)
		if err := tx.Save(&item).Error; err != nil {
			return conflictOr(err, models.ErrMenuItemExists, "a menu item with this name already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *menuService) DeleteItem(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.First(&item, id).Error; err != nil {
			return notFoundOr(err, models.ErrMenuItemNotFound, "menu item not found")
		}

		// Order lines keep their frozen price but still reference the item
		var lines int64
		if err := tx.Model(&models.OrderLine{}).Where("menu_item_id = ?", id).Count(&lines).Error; err != nil {
			return persistenceError(err)
		}
		if lines > 0 {
			return models.NewConflictError(models.ErrMenuItemInUse,
				"menu item is referenced by existing orders; mark it unavailable instead").
				WithDetails(map[string]interface{}{"order_lines": lines})
		}

		if err := tx.Delete(&item).Error; err != nil {
			return persistenceError(err)
		}
		return nil
	})
}
