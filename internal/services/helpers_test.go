package services

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	user      *models.User
	admin     *models.User
	store     *models.Store
	latte     *models.MenuItem
	croissant *models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db}

	f.user = &models.User{TelegramID: 1001, Username: "alice", Role: models.RoleCustomer}
	f.admin = &models.User{TelegramID: 2002, Username: "boss", Role: models.RoleAdmin}
	require.NoError(t, db.Create(f.user).Error)
	require.NoError(t, db.Create(f.admin).Error)

	f.store = &models.Store{Name: "Main", Address: "1 Main Street", WorkingHours: "08:00-22:00"}
	require.NoError(t, db.Create(f.store).Error)

	f.latte = &models.MenuItem{Name: "Latte", Price: dec("250.00"), Category: "coffee", IsAvailable: true}
	f.croissant = &models.MenuItem{Name: "Croissant", Price: dec("180.00"), Category: "bakery", IsAvailable: true}
	require.NoError(t, db.Create(f.latte).Error)
	require.NoError(t, db.Create(f.croissant).Error)
	return f
}

func (f *fixture) createDiscount(t *testing.T, d models.Discount) *models.Discount {
	t.Helper()
	d.Code = models.NormalizeCode(d.Code)
	require.NoError(t, f.db.Create(&d).Error)
	return &d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func datePtr(t time.Time) *models.Date {
	d := models.DateOf(t)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func assertAppError(t *testing.T, err error, kind models.ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, kind, appErr.Kind, appErr.Error())
	assert.Equal(t, code, appErr.Code)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// assertPointsInvariant checks that every user's cached points equal their ledger sum
func assertPointsInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()
	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		var sum int64
		require.NoError(t, db.Model(&models.LoyaltyEntry{}).
			Where("user_id = ?", u.ID).
			Select("COALESCE(SUM(points_earned), 0)").
			Scan(&sum).Error)
		assert.Equal(t, sum, u.Points, "user %d", u.ID)
	}
}
