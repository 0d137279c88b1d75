package auth

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIssuer(t *testing.T) {
	issuer := NewSessionIssuer("session-secret", 2*time.Hour)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	token, expiresAt, err := issuer.Issue(&models.User{ID: 42, TelegramID: 1001, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(2*time.Hour), expiresAt)
	assert.Equal(t, 2*time.Hour, issuer.TTL())

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("session-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixed }))
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "42", claims["uid"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "telegram:1001", claims["sub"])
}

func TestSessionIssuerRejectsUnsavedUser(t *testing.T) {
	issuer := NewSessionIssuer("session-secret", time.Hour)

	_, _, err := issuer.Issue(nil)
	assert.Error(t, err)

	_, _, err = issuer.Issue(&models.User{TelegramID: 5})
	assert.Error(t, err)
}
