package services

import (
	"context"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MinPickupLead is how far ahead of now a pickup must be scheduled
const MinPickupLead = 15 * time.Minute

// currency units per loyalty point
var pointsDivisor = decimal.NewFromInt(100)

// OrderItemRequest is one cart entry
type OrderItemRequest struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// PlaceOrderRequest is the checkout payload submitted by the mini app
type PlaceOrderRequest struct {
	Items        []OrderItemRequest `json:"items"`
	DiscountCode *string            `json:"discount_code,omitempty"`
	PickupTime   time.Time          `json:"pickup_time"`
	StoreID      uint               `json:"store_id"`
}

// OrderPublisher is notified of every committed order
type OrderPublisher interface {
	PublishOrder(order *models.Order)
}

type OrderService interface {
	// PlaceOrder validates the cart, prices it, applies an optional discount and
	// persists the order with its lines and loyalty accrual in one transaction
	PlaceOrder(ctx context.Context, userID uint, req PlaceOrderRequest) (*models.Order, error)
	// ListUserOrders returns the user's orders, newest first
	ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error)
	// GetOrder returns an order visible to the requester: its owner or an admin
	GetOrder(ctx context.Context, id uint, requester *models.User) (*models.Order, error)
}

// OrderOption customizes an order service
type OrderOption func(*orderService)

// WithClock replaces the time source used for pickup validation and timestamps
func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) {
		s.now = now
	}
}

// WithPublisher sets the receiver of committed orders
func WithPublisher(publisher OrderPublisher) OrderOption {
	return func(s *orderService) {
		s.publisher = publisher
	}
}

type orderService struct {
	db         *gorm.DB
	promotions PromotionService
	publisher  OrderPublisher
	now        func() time.Time
}

func NewOrderService(db *gorm.DB, promotions PromotionService, opts ...OrderOption) OrderService {
	s := &orderService{db: db, promotions: promotions, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) PlaceOrder(ctx context.Context, userID uint, req PlaceOrderRequest) (*models.Order, error) {
	now := s.now().UTC()
	db := s.db.WithContext(ctx)

	// 1. pickup time, compared in UTC
	pickup := req.PickupTime.UTC()
	earliest := now.Add(MinPickupLead)
	if pickup.Before(earliest) {
		return nil, models.NewValidationError(models.ErrPickupTooSoon, "pickup time must be at least 15 minutes from now").
			WithDetails(map[string]interface{}{"earliest_pickup_time": earliest})
	}

	// 2. cart
	if len(req.Items) == 0 {
		return nil, models.NewValidationError(models.ErrEmptyCart, "cart is empty")
	}

	// 3. store and items, each in a single lookup
	var store models.Store
	if err := db.First(&store, req.StoreID).Error; err != nil {
		return nil, notFoundOr(err, models.ErrStoreNotFound, "store not found")
	}

	ids := lo.Uniq(lo.Map(req.Items, func(item OrderItemRequest, _ int) uint { return item.MenuItemID }))
	var items []models.MenuItem
	if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, persistenceError(err)
	}
	if len(items) != len(ids) {
		found := lo.Map(items, func(item models.MenuItem, _ int) uint { return item.ID })
		return nil, models.NewNotFoundError(models.ErrItemsNotFound, "some menu items were not found").
			WithDetails(map[string]interface{}{"menu_item_ids": lo.Without(ids, found...)})
	}
	byID := lo.KeyBy(items, func(item models.MenuItem) uint { return item.ID })

	// 4-5. per line checks and subtotal
	lines := make([]models.OrderLine, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, entry := range req.Items {
		item := byID[entry.MenuItemID]
		if !item.IsAvailable {
			return nil, models.NewValidationError(models.ErrItemUnavailable, item.Name+" is not available").
				WithDetails(map[string]interface{}{"menu_item_id": item.ID, "name": item.Name})
		}
		if entry.Quantity <= 0 {
			return nil, models.NewValidationError(models.ErrInvalidQuantity, "quantity must be positive").
				WithDetails(map[string]interface{}{"menu_item_id": item.ID, "quantity": entry.Quantity})
		}
		line := models.OrderLine{
			MenuItemID:      item.ID,
			Quantity:        entry.Quantity,
			PriceAtPurchase: item.Price,
		}
		subtotal = subtotal.Add(line.LineTotal())
		lines = append(lines, line)
	}

	// 6. discount
	total := subtotal
	var quote *DiscountQuote
	if req.DiscountCode != nil && strings.TrimSpace(*req.DiscountCode) != "" {
		var err error
		quote, err = s.promotions.QuoteDiscount(ctx, *req.DiscountCode, subtotal, now)
		if err != nil {
			return nil, err
		}
		total = decimal.Max(subtotal.Sub(quote.Amount), decimal.Zero)
	}
	points := total.Div(pointsDivisor).Floor().IntPart()

	order := models.Order{
		UserID:     userID,
		StoreID:    store.ID,
		Status:     models.OrderStatusNew,
		TotalPrice: total,
		PickupTime: pickup,
		CreatedAt:  now,
	}

	// 7-8. one transaction; any error rolls every write back
	err := db.Transaction(func(tx *gorm.DB) error {
		if quote != nil {
			if err := s.promotions.RedeemInTx(tx, quote.Discount.ID); err != nil {
				return err
			}
			order.DiscountID = &quote.Discount.ID
		}

		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return persistenceError(err)
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return persistenceError(err)
		}

		if points > 0 {
			entry := models.LoyaltyEntry{
				UserID:       userID,
				OrderID:      &order.ID,
				PointsEarned: points,
				Reason:       models.LoyaltyReasonPurchase,
				CreatedAt:    now,
			}
			if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
				return persistenceError(err)
			}
			result := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("points", gorm.Expr("points + ?", points))
			if result.Error != nil {
				return persistenceError(result.Error)
			}
			if result.RowsAffected == 0 {
				return models.NewNotFoundError(models.ErrUserNotFound, "user not found")
			}
		}
		return nil
	})
	if err != nil {
		if models.IsKind(err, models.KindInfrastructure) {
			log.WithError(err).WithField("user_id", userID).Error("Order transaction rolled back")
		}
		return nil, err
	}

	// 9. committed
	order.Lines = lines
	log.WithFields(log.Fields{
		"order_id":      order.ID,
		"user_id":       userID,
		"total_price":   order.TotalPrice.StringFixed(2),
		"points_earned": points,
		"discounted":    quote != nil,
	}).Info("Order placed")

	if s.publisher != nil {
		s.publisher.PublishOrder(&order)
	}
	return &order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, persistenceError(err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint, requester *models.User) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Lines").First(&order, id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrOrderNotFound, "order not found")
	}
	if requester == nil || (order.UserID != requester.ID && !requester.IsAdmin()) {
		return nil, models.NewAuthorizationError(models.ErrOrderForbidden, "order belongs to another user")
	}
	return &order, nil
}
