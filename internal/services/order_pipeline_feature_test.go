package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"gorm.io/gorm"
)

type pipelineTestContext struct {
	db    *gorm.DB
	now   time.Time
	store models.Store
	items map[string]models.MenuItem
	users map[string]models.User
	order *models.Order
	err   error
}

func (c *pipelineTestContext) reset() error {
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	c.db = db
	c.store = models.Store{Name: "Main", Address: "1 Main Street", WorkingHours: "08:00-22:00"}
	c.items = map[string]models.MenuItem{}
	c.users = map[string]models.User{}
	c.order, c.err = nil, nil
	return db.Create(&c.store).Error
}

func (c *pipelineTestContext) theCurrentTimeIs(value string) error {
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return err
	}
	c.now = now
	return nil
}

func (c *pipelineTestContext) theMenuHasAnAvailableItemPriced(name, price string) error {
	item := models.MenuItem{Name: name, Price: dec(price), Category: "coffee", IsAvailable: true}
	if err := c.db.Create(&item).Error; err != nil {
		return err
	}
	c.items[name] = item
	return nil
}

func (c *pipelineTestContext) aCustomer(name string) error {
	user := models.User{TelegramID: int64(len(c.users) + 1), Username: name, Role: models.RoleCustomer}
	if err := c.db.Create(&user).Error; err != nil {
		return err
	}
	c.users[name] = user
	return nil
}

func (c *pipelineTestContext) anActiveDiscountOfPercent(code string, percent int) error {
	d := models.Discount{Code: code, Percentage: decPtr(fmt.Sprint(percent)), IsActive: true}
	return c.db.Create(&d).Error
}

func (c *pipelineTestContext) anActiveDiscountThatEndedYesterday(code string, percent int) error {
	d := models.Discount{
		Code:       code,
		Percentage: decPtr(fmt.Sprint(percent)),
		IsActive:   true,
		ValidTo:    datePtr(c.now.AddDate(0, 0, -1)),
	}
	return c.db.Create(&d).Error
}

func (c *pipelineTestContext) place(user string, itemID uint, qty, minutes int, code *string) error {
	customer, ok := c.users[user]
	if !ok {
		return fmt.Errorf("unknown customer %q", user)
	}
	svc := NewOrderService(c.db, NewPromotionService(c.db), WithClock(func() time.Time { return c.now }))
	c.order, c.err = svc.PlaceOrder(context.Background(), customer.ID, PlaceOrderRequest{
		Items:        []OrderItemRequest{{MenuItemID: itemID, Quantity: qty}},
		DiscountCode: code,
		PickupTime:   c.now.Add(time.Duration(minutes) * time.Minute),
		StoreID:      c.store.ID,
	})
	return nil
}

func (c *pipelineTestContext) ordersForPickup(user string, qty int, item string, minutes int) error {
	return c.place(user, c.items[item].ID, qty, minutes, nil)
}

func (c *pipelineTestContext) ordersForPickupWithCode(user string, qty int, item string, minutes int, code string) error {
	return c.place(user, c.items[item].ID, qty, minutes, &code)
}

func (c *pipelineTestContext) ordersUnknownItem(user string, qty, itemID, minutes int) error {
	return c.place(user, uint(itemID), qty, minutes, nil)
}

func (c *pipelineTestContext) theOrderSucceedsWithTotal(total string) error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if !c.order.TotalPrice.Equal(dec(total)) {
		return fmt.Errorf("expected total %s, got %s", total, c.order.TotalPrice)
	}
	return nil
}

func (c *pipelineTestContext) hasLoyaltyPoints(user string, points int) error {
	var stored models.User
	if err := c.db.First(&stored, c.users[user].ID).Error; err != nil {
		return err
	}
	if stored.Points != int64(points) {
		return fmt.Errorf("expected %d points, got %d", points, stored.Points)
	}
	return nil
}

func (c *pipelineTestContext) everyBalanceMatchesItsLedger() error {
	var users []models.User
	if err := c.db.Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		var sum int64
		err := c.db.Model(&models.LoyaltyEntry{}).Where("user_id = ?", u.ID).
			Select("COALESCE(SUM(points_earned), 0)").Scan(&sum).Error
		if err != nil {
			return err
		}
		if sum != u.Points {
			return fmt.Errorf("user %d has %d points but a ledger of %d", u.ID, u.Points, sum)
		}
	}
	return nil
}

func (c *pipelineTestContext) discountHasBeenUsed(code string, times int) error {
	var d models.Discount
	if err := c.db.Where("code = ?", code).First(&d).Error; err != nil {
		return err
	}
	if d.UsedCount != times {
		return fmt.Errorf("expected %d uses, got %d", times, d.UsedCount)
	}
	return nil
}

func (c *pipelineTestContext) theOrderFailsWith(kind, code string) error {
	if c.err == nil {
		return fmt.Errorf("expected a %s error, order %d was placed", kind, c.order.ID)
	}
	appErr := models.AsAppError(c.err)
	if string(appErr.Kind) != kind || appErr.Code != code {
		return fmt.Errorf("expected %s/%s, got %s/%s", kind, code, appErr.Kind, appErr.Code)
	}
	return nil
}

func (c *pipelineTestContext) theOutcomeIs(outcome string) error {
	if outcome == "ok" {
		if c.err != nil {
			return fmt.Errorf("expected success, got %v", c.err)
		}
		return nil
	}
	return c.theOrderFailsWith(string(models.KindValidation), outcome)
}

func (c *pipelineTestContext) noOrdersExist() error {
	for _, model := range []interface{}{&models.Order{}, &models.OrderLine{}, &models.LoyaltyEntry{}} {
		var n int64
		if err := c.db.Model(model).Count(&n).Error; err != nil {
			return err
		}
		if n != 0 {
			return fmt.Errorf("expected no rows in %T, found %d", model, n)
		}
	}
	return nil
}

func InitializeOrderScenario(ctx *godog.ScenarioContext) {
	tc := &pipelineTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	// Given steps
	ctx.Step(`^the current time is "([^"]*)"$`, tc.theCurrentTimeIs)
	ctx.Step(`^the menu has an available item "([^"]*)" priced (\d+\.\d{2})$`, tc.theMenuHasAnAvailableItemPriced)
	ctx.Step(`^a customer "([^"]*)"$`, tc.aCustomer)
	ctx.Step(`^an active discount "([^"]*)" of (\d+) percent$`, tc.anActiveDiscountOfPercent)
	ctx.Step(`^an active discount "([^"]*)" of (\d+) percent that ended yesterday$`, tc.anActiveDiscountThatEndedYesterday)

	// When steps
	ctx.Step(`^"([^"]*)" orders (\d+) x "([^"]*)" for pickup in (\d+) minutes$`, tc.ordersForPickup)
	ctx.Step(`^"([^"]*)" orders (\d+) x "([^"]*)" for pickup in (\d+) minutes with code "([^"]*)"$`, tc.ordersForPickupWithCode)
	ctx.Step(`^"([^"]*)" orders (\d+) x item (\d+) for pickup in (\d+) minutes$`, tc.ordersUnknownItem)

	// Then steps
	ctx.Step(`^the order succeeds with total (\d+\.\d{2})$`, tc.theOrderSucceedsWithTotal)
	ctx.Step(`^"([^"]*)" has (\d+) loyalty points$`, tc.hasLoyaltyPoints)
	ctx.Step(`^every balance matches its ledger$`, tc.everyBalanceMatchesItsLedger)
	ctx.Step(`^discount "([^"]*)" has been used (\d+) times$`, tc.discountHasBeenUsed)
	ctx.Step(`^the order fails with a (validation|not_found) error "([^"]*)"$`, tc.theOrderFailsWith)
	ctx.Step(`^the outcome is "([^"]*)"$`, tc.theOutcomeIs)
	ctx.Step(`^no orders exist$`, tc.noOrdersExist)
}

func TestOrderFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeOrderScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/order_pipeline.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
