package auth

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	log "github.com/sirupsen/logrus"
)

// HandleToken handles the token endpoint for the client credentials grant
// @Summary Token Endpoint
// @Description Obtain an access token for an integration client using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scope, defaults to the client's scopes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")

	switch grantType {
	case string(oauth2.ClientCredentials):
		o.handleClientCredentials(c)
	default:
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error("unsupported_grant_type", "only client_credentials is supported"))
	}
}

func (o *OAuthService) handleClientCredentials(c *gin.Context) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	if clientID == "" || clientSecret == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error("invalid_request", "client_id and client_secret are required"))
		return
	}

	// Validate client
	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error("invalid_client", "unknown client"))
		return
	}

	// Verify client secret
	if !client.VerifyPassword(clientSecret) {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error("invalid_client", "client authentication failed"))
		return
	}

	scope := c.PostForm("scope")
	if scope == "" {
		scope = client.Scopes
	}

	// Generate token using OAuth2 server; the manager re-verifies the secret
	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        scope,
		Request:      c.Request,
	})
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Token generation failed")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error("server_error", "token generation failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn().Seconds()),
		"scope":        ti.GetScope(),
	})
}
