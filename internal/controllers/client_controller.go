package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register an integration client (POS terminal, backup job) acting with the caller's role
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body services.ClientRegistration true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError "Invalid request"
// @Failure 500 {object} models.APIError "Client creation failed"
// @Security BearerAuth
// @Router /api/v1/protected/admin/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req services.ClientRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	client, secret, err := cc.clientService.RegisterClient(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     client.ID,
		"client_secret": secret, // Return plain secret only once
		"name":          client.Name,
		"scopes":        client.Scopes,
		"grant_types":   client.GrantTypes,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient "List of clients"
// @Failure 500 {object} models.APIError "Failed to retrieve clients"
// @Security BearerAuth
// @Router /api/v1/protected/admin/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary Get OAuth2 client
// @Tags OAuth2 Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} models.OAuthClient
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/v1/protected/admin/clients/{id} [get]
func (cc *ClientController) GetClient(c *gin.Context) {
	client, err := cc.clientService.GetClientByID(c.Request.Context(), c.Param("id"))
	if err == nil && client.UserID != c.GetUint("userID") {
		// Other admins' clients are reported as missing
		err = models.NewNotFoundError(models.ErrClientNotFound, "client not found")
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated user
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/v1/protected/admin/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), c.GetUint("userID")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
