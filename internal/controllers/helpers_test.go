package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/auth"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/middleware"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/realtime"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testBotToken  = "123456:test-bot-token"
	testJWTSecret = "test-secret-key-for-jwt-signing"
)

type testAPI struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	sessions *auth.SessionIssuer
	customer *models.User
	admin    *models.User
	store    *models.Store
	latte    *models.MenuItem
}

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

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	api := &testAPI{t: t, db: db, sessions: auth.NewSessionIssuer(testJWTSecret, time.Hour)}
	api.customer = &models.User{TelegramID: 1001, Username: "alice", Role: models.RoleCustomer}
	api.admin = &models.User{TelegramID: 2002, Username: "boss", Role: models.RoleAdmin}
	require.NoError(t, db.Create(api.customer).Error)
	require.NoError(t, db.Create(api.admin).Error)
	api.store = &models.Store{Name: "Main", Address: "1 Main Street", WorkingHours: "08:00-22:00"}
	require.NoError(t, db.Create(api.store).Error)
	api.latte = &models.MenuItem{Name: "Latte", Price: decimal.RequireFromString("250.00"), Category: "coffee", IsAvailable: true}
	require.NoError(t, db.Create(api.latte).Error)

	dispatcher := services.NewDispatcher(services.LogSender{}, 2)
	t.Cleanup(dispatcher.Close)

	userService := services.NewUserService(db)
	promotions := services.NewPromotionService(db)
	verifier := auth.NewInitDataVerifier(testBotToken, 24*time.Hour)
	backups := services.NewBackupService(db, services.BackupConfig{
		Dir:      t.TempDir(),
		Database: database.DatabaseConfig{Driver: "sqlite"},
	})

	routes := &Routes{
		Authenticate: middleware.Authenticate([]byte(testJWTSecret), verifier, userService),
		OAuthToken:   auth.NewOAuthService(db, testJWTSecret, time.Hour).HandleToken,
		OrderFeed:    realtime.NewHub().ServeWS,
		Auth:         NewAuthController(verifier, userService, api.sessions),
		Menu:         NewMenuController(services.NewMenuService(db), services.NewStoreService(db)),
		Promotions:   NewPromotionController(promotions),
		Orders:       NewOrderController(services.NewOrderService(db, promotions)),
		Loyalty:      NewLoyaltyController(services.NewLoyaltyService(db)),
		Newsletters:  NewNewsletterController(services.NewNewsletterService(db, dispatcher)),
		Operations:   NewOperationsController(services.NewExportService(db), backups),
		Clients:      NewClientController(services.NewClientService(db)),
	}

	api.router = gin.New()
	api.router.Use(middleware.RequestLogger())
	routes.Register(api.router)
	return api
}

func (a *testAPI) token(user *models.User) string {
	a.t.Helper()
	token, _, err := a.sessions.Issue(user)
	require.NoError(a.t, err)
	return token
}

// do sends body as JSON, authenticated as user when user is not nil
func (a *testAPI) do(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(user))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) decode(w *httptest.ResponseRecorder, out interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (a *testAPI) errorCode(w *httptest.ResponseRecorder) string {
	a.t.Helper()
	var apiErr models.APIError
	a.decode(w, &apiErr)
	return apiErr.Code
}

func initDataFor(telegramID int64, username string) string {
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	values.Set("user", `{"id":`+strconv.FormatInt(telegramID, 10)+`,"username":"`+username+`"}`)
	return auth.SignInitData(testBotToken, values)
}

func orderBody(itemID uint, qty int, storeID uint, pickupIn time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"items":       []map[string]interface{}{{"menu_item_id": itemID, "quantity": qty}},
		"pickup_time": time.Now().Add(pickupIn).UTC().Format(time.RFC3339),
		"store_id":    storeID,
	}
}

func (a *testAPI) doWithInitData(method, path, initData string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "tma "+initData)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}
