package services

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountQuote is the outcome of validating a code against a subtotal
type DiscountQuote struct {
	Discount models.Discount
	Amount   decimal.Decimal
}

// PromotionService validates discount codes and manages promotions and discounts
type PromotionService interface {
	// QuoteDiscount checks code for use on the given day and computes its amount.
	// It performs no writes.
	QuoteDiscount(ctx context.Context, code string, subtotal decimal.Decimal, today time.Time) (*DiscountQuote, error)
	// RedeemInTx consumes one use of the discount inside the caller's transaction
	RedeemInTx(tx *gorm.DB, discountID uint) error

	ActiveDiscounts(ctx context.Context, today time.Time) ([]models.Discount, error)
	ListDiscounts(ctx context.Context) ([]models.Discount, error)
	GetDiscount(ctx context.Context, id uint) (*models.Discount, error)
	CreateDiscount(ctx context.Context, discount *models.Discount) error
	UpdateDiscount(ctx context.Context, id uint, patch models.DiscountPatch) (*models.Discount, error)
	DeleteDiscount(ctx context.Context, id uint) error

	ActivePromotions(ctx context.Context, today time.Time) ([]models.Promotion, error)
	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, promo *models.Promotion) error
	UpdatePromotion(ctx context.Context, id uint, patch models.PromotionPatch) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id uint) error
}

type promotionService struct {
	db *gorm.DB
}

func NewPromotionService(db *gorm.DB) PromotionService {
	return &promotionService{db: db}
}

func (s *promotionService) QuoteDiscount(ctx context.Context, code string, subtotal decimal.Decimal, today time.Time) (*DiscountQuote, error) {
	var discount models.Discount
	err := s.db.WithContext(ctx).Where("code = ?", models.NormalizeCode(code)).First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError(models.ErrDiscountInvalid, "discount code is invalid")
		}
		return nil, persistenceError(err)
	}

	if err := checkRedeemable(&discount, today); err != nil {
		return nil, err
	}
	return &DiscountQuote{Discount: discount, Amount: discount.Amount(subtotal)}, nil
}

// checkRedeemable applies the code checks in order: active, started, not expired, not exhausted
func checkRedeemable(d *models.Discount, today time.Time) error {
	day := time.Time(models.DateOf(today.UTC()))
	if !d.IsActive {
		return models.NewValidationError(models.ErrDiscountInvalid, "discount code is invalid")
	}
	if d.ValidFrom != nil && day.Before(time.Time(models.NormalizeDate(*d.ValidFrom))) {
		return models.NewValidationError(models.ErrDiscountNotStarted, "discount code is not active yet")
	}
	if d.ValidTo != nil && day.After(time.Time(models.NormalizeDate(*d.ValidTo))) {
		return models.NewValidationError(models.ErrDiscountExpired, "discount code has expired")
	}
	if d.Exhausted() {
		return models.NewValidationError(models.ErrDiscountExhausted, "discount code usage limit reached")
	}
	return nil
}

func (s *promotionService) RedeemInTx(tx *gorm.DB, discountID uint) error {
	// The guard in the WHERE clause makes the check and the increment one atomic step
	result := tx.Model(&models.Discount{}).
		Where("id = ? AND is_active = ? AND (usage_limit IS NULL OR used_count < usage_limit)", discountID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewConflictError(models.ErrDiscountExhausted, "discount code usage limit reached")
	}
	return nil
}

func (s *promotionService) ActiveDiscounts(ctx context.Context, today time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("code").Find(&discounts).Error; err != nil {
		return nil, persistenceError(err)
	}
	return lo.Filter(discounts, func(d models.Discount, _ int) bool {
		return checkRedeemable(&d, today) == nil
	}), nil
}

func (s *promotionService) ListDiscounts(ctx context.Context) ([]models.Discount, error) {
	discounts := []models.Discount{}
	if err := s.db.WithContext(ctx).Order("id").Find(&discounts).Error; err != nil {
		return nil, persistenceError(err)
	}
	return discounts, nil
}

func (s *promotionService) GetDiscount(ctx context.Context, id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := s.db.WithContext(ctx).First(&discount, id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrDiscountNotFound, "discount not found")
	}
	return &discount, nil
}

func (s *promotionService) CreateDiscount(ctx context.Context, discount *models.Discount) error {
	discount.ID = 0
	discount.UsedCount = 0
	normalizeDiscount(discount)
	if err := discount.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(discount).Error; err != nil {
		return conflictOr(err, models.ErrDiscountExists, "a discount with this code already exists")
	}
	return nil
}

func (s *promotionService) UpdateDiscount(ctx context.Context, id uint, patch models.DiscountPatch) (*models.Discount, error) {
	var discount models.Discount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&discount, id).Error; err != nil {
			return notFoundOr(err, models.ErrDiscountNotFound, "discount not found")
		}
		if err := patch.Apply(&discount); err != nil {
			return err
		}
		normalizeDiscount(&discount)
		// used_count belongs to the order pipeline
		err := tx.Model(&discount).
			Select("code", "percentage", "value", "valid_from", "valid_to", "is_active", "usage_limit").
			Updates(&discount).Error
		if err != nil {
			return conflictOr(err, models.ErrDiscountExists, "a discount with this code already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (s *promotionService) DeleteDiscount(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Discount{}, id)
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(models.ErrDiscountNotFound, "discount not found")
	}
	return nil
}

func normalizeDiscount(d *models.Discount) {
	d.Code = models.NormalizeCode(d.Code)
	if d.ValidFrom != nil {
		from := models.NormalizeDate(*d.ValidFrom)
		d.ValidFrom = &from
	}
	if d.ValidTo != nil {
		to := models.NormalizeDate(*d.ValidTo)
		d.ValidTo = &to
	}
}

func (s *promotionService) ActivePromotions(ctx context.Context, today time.Time) ([]models.Promotion, error) {
	var promos []models.Promotion
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("start_date DESC, id").Find(&promos).Error; err != nil {
		return nil, persistenceError(err)
	}
	day := time.Time(models.DateOf(today.UTC()))
	return lo.Filter(promos, func(p models.Promotion, _ int) bool {
		start := time.Time(models.NormalizeDate(p.StartDate))
		end := time.Time(models.NormalizeDate(p.EndDate))
		return !day.Before(start) && !day.After(end)
	}), nil
}

func (s *promotionService) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	promos := []models.Promotion{}
	if err := s.db.WithContext(ctx).Order("id").Find(&promos).Error; err != nil {
		return nil, persistenceError(err)
	}
	return promos, nil
}

func (s *promotionService) CreatePromotion(ctx context.Context, promo *models.Promotion) error {
	promo.ID = 0
	promo.StartDate = models.NormalizeDate(promo.StartDate)
	promo.EndDate = models.NormalizeDate(promo.EndDate)
	if err := promo.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(promo).Error; err != nil {
		return persistenceError(err)
	}
	return nil
}

func (s *promotionService) UpdatePromotion(ctx context.Context, id uint, patch models.PromotionPatch) (*models.Promotion, error) {
	var promo models.Promotion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&promo, id).Error; err != nil {
			return notFoundOr(err, models.ErrPromotionNotFound, "promotion not found")
		}
		if err := patch.Apply(&promo); err != nil {
			return err
		}
		promo.StartDate = models.NormalizeDate(promo.StartDate)
		promo.EndDate = models.NormalizeDate(promo.EndDate)
		if err := tx.Save(&promo).Error; err != nil {
			return persistenceError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (s *promotionService) DeletePromotion(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Promotion{}, id)
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(models.ErrPromotionNotFound, "promotion not found")
	}
	return nil
}
