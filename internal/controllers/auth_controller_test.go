package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/auth/telegram", nil, map[string]string{"init_data": initDataFor(5005, "carol")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session SessionResponse
	api.decode(w, &session)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	require.NotNil(t, session.User)
	assert.Equal(t, int64(5005), session.User.TelegramID)
	assert.Equal(t, models.RoleCustomer, session.User.Role)

	// the issued token opens the protected API
	req := httptest.NewRequest(http.MethodGet, "/api/v1/protected/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	me := httptest.NewRecorder()
	api.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"carol"`)
}

func TestTelegramLoginRejectsBadInitData(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/auth/telegram", nil, map[string]string{"init_data": "user=%7B%22id%22%3A1%7D&auth_date=1&hash=00"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrInvalidSignature, api.errorCode(w))

	w = api.do(http.MethodPost, "/api/v1/auth/telegram", nil, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesAcceptInitData(t *testing.T) {
	api := newTestAPI(t)

	req := api.do(http.MethodGet, "/api/v1/protected/loyalty/balance", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, req.Code)

	w := api.doWithInitData(http.MethodGet, "/api/v1/protected/loyalty/balance", initDataFor(api.customer.TelegramID, "alice"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"points":0`)
}
