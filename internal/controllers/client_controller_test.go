package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientEndpointsAndTokenExchange(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/protected/admin/clients", api.admin, map[string]string{"name": "POS terminal", "scopes": "orders:read"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	api.decode(w, &created)
	clientID := created["client_id"].(string)
	secret := created["client_secret"].(string)
	assert.Equal(t, "client_credentials", created["grant_types"])

	w = api.do(http.MethodGet, "/api/v1/protected/admin/clients", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), clientID)
	assert.NotContains(t, w.Body.String(), secret)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/protected/admin/clients/"+clientID, api.admin, nil).Code)

	// exchange the credentials and call an admin endpoint with the client token
	form := url.Values{"grant_type": {"client_credentials"}, "client_id": {clientID}, "client_secret": {secret}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/protected/admin/export/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/protected/admin/clients/"+clientID, api.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/v1/protected/admin/clients/"+clientID, api.admin, nil).Code)
}

func TestCreateClientValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/protected/admin/clients", api.admin, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/v1/protected/admin/clients/unknown", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
