package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type LoyaltyController struct {
	loyalty services.LoyaltyService
}

func NewLoyaltyController(loyalty services.LoyaltyService) *LoyaltyController {
	return &LoyaltyController{loyalty: loyalty}
}

// Balance godoc
// @Summary Loyalty balance
// @Tags loyalty
// @Produce json
// @Success 200 {object} services.LoyaltyBalance
// @Security BearerAuth
// @Router /api/v1/protected/loyalty/balance [get]
func (lc *LoyaltyController) Balance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	balance, err := lc.loyalty.Balance(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// History godoc
// @Summary Loyalty ledger
// @Description Every points entry of the user, newest first
// @Tags loyalty
// @Produce json
// @Success 200 {array} models.LoyaltyEntry
// @Security BearerAuth
// @Router /api/v1/protected/loyalty/history [get]
func (lc *LoyaltyController) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	entries, err := lc.loyalty.History(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// SaveFavorite godoc
// @Summary Save the favorite order
// @Description Replaces the user's single saved cart
// @Tags loyalty
// @Accept json
// @Produce json
// @Param favorite body object{order_details=object,name=string} true "Cart snapshot"
// @Success 200 {object} models.FavoriteOrder
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/loyalty/favorite [post]
func (lc *LoyaltyController) SaveFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		OrderDetails json.RawMessage `json:"order_details" binding:"required"`
		Name         *string         `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "order_details is required")
		return
	}

	fav, err := lc.loyalty.SaveFavorite(c.Request.Context(), user.ID, datatypes.JSON(req.OrderDetails), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fav)
}

// GetFavorite godoc
// @Summary Get the favorite order
// @Description Returns null when nothing was saved
// @Tags loyalty
// @Produce json
// @Success 200 {object} models.FavoriteOrder
// @Security BearerAuth
// @Router /api/v1/protected/loyalty/favorite [get]
func (lc *LoyaltyController) GetFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fav, err := lc.loyalty.GetFavorite(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fav)
}
