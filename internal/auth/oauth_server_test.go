package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthToken{})
	require.NoError(t, err)

	return db
}

// createTestClient stores a client owned by a fresh user with the given role
func createTestClient(t *testing.T, db *gorm.DB, clientID, secret string, role models.Role) *models.User {
	owner := &models.User{TelegramID: time.Now().UnixNano(), Username: "owner", Role: role}
	require.NoError(t, db.Create(owner).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ID:         clientID,
		Secret:     string(hashedSecret),
		Name:       "POS terminal",
		Domain:     "http://localhost",
		Scopes:     "orders:read",
		UserID:     owner.ID,
		GrantTypes: "client_credentials",
	}
	require.NoError(t, db.Create(client).Error)
	return owner
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, testJWTSecret, time.Hour)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testJWTSecret, time.Hour)
	owner := createTestClient(t, db, "test_client", "test_secret", models.RoleAdmin)

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "orders:read",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokenInfo.GetAccess())

	// The token carries the owner's id and role
	parsed, err := jwt.Parse(tokenInfo.GetAccess(), func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, strconv.FormatUint(uint64(owner.ID), 10), claims["uid"])
	assert.Equal(t, "test_client", claims["aud"])

	// And it was persisted through the gorm token store
	var stored models.OAuthToken
	require.NoError(t, db.Where("access_token = ?", tokenInfo.GetAccess()).First(&stored).Error)
	assert.Equal(t, "test_client", stored.ClientID)
}

func TestJWTTokenGenerationWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testJWTSecret, time.Hour)
	createTestClient(t, db, "test_client", "test_secret", models.RoleCustomer)

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "nope",
	})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "integration_test_client", "integration_test_secret", models.RoleCustomer)

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	require.NoError(t, err)
	assert.Equal(t, "integration_test_client", retrievedClient.GetID())

	_, err = clientStore.GetByID(ctx, "missing")
	assert.Error(t, err)
}

func TestTokenStoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	info := &oauthmodels.Token{
		ClientID:        "c1",
		UserID:          "7",
		Access:          "access-123",
		AccessCreateAt:  time.Now().UTC(),
		AccessExpiresIn: time.Hour,
		Refresh:         "refresh-123",
	}
	require.NoError(t, store.Create(ctx, info))

	got, err := store.GetByAccess(ctx, "access-123")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.GetClientID())
	assert.Equal(t, "refresh-123", got.GetRefresh())

	got, err = store.GetByRefresh(ctx, "refresh-123")
	require.NoError(t, err)
	assert.Equal(t, "access-123", got.GetAccess())

	_, err = store.GetByCode(ctx, "anything")
	assert.Error(t, err)

	require.NoError(t, store.RemoveByAccess(ctx, "access-123"))
	_, err = store.GetByAccess(ctx, "access-123")
	assert.Error(t, err)
}
