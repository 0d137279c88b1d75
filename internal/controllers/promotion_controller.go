package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PromotionController struct {
	promotions services.PromotionService
	now        func() time.Time
}

func NewPromotionController(promotions services.PromotionService) *PromotionController {
	return &PromotionController{promotions: promotions, now: time.Now}
}

// ActivePromotions godoc
// @Summary List running promotions
// @Tags promotions
// @Produce json
// @Success 200 {array} models.Promotion
// @Router /api/v1/public/promotions [get]
func (pc *PromotionController) ActivePromotions(c *gin.Context) {
	promos, err := pc.promotions.ActivePromotions(c.Request.Context(), pc.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

// ActiveDiscounts godoc
// @Summary List redeemable discount codes
// @Description Codes that are active, inside their validity window and not exhausted
// @Tags promotions
// @Produce json
// @Success 200 {array} models.Discount
// @Router /api/v1/public/promotions/discounts [get]
func (pc *PromotionController) ActiveDiscounts(c *gin.Context) {
	discounts, err := pc.promotions.ActiveDiscounts(c.Request.Context(), pc.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, discounts)
}

// ListPromotions godoc
// @Summary List all promotions
// @Tags admin
// @Produce json
// @Success 200 {array} models.Promotion
// @Security BearerAuth
// @Router /api/v1/protected/admin/promotions [get]
func (pc *PromotionController) ListPromotions(c *gin.Context) {
	promos, err := pc.promotions.ListPromotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

// CreatePromotion godoc
// @Summary Create a promotion
// @Description Dates are YYYY-MM-DD. Promotions are active unless is_active is false.
// @Tags admin
// @Accept json
// @Produce json
// @Param promotion body models.PromotionInput true "Promotion"
// @Success 201 {object} models.Promotion
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/promotions [post]
func (pc *PromotionController) CreatePromotion(c *gin.Context) {
	var input models.PromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	promo := input.Promotion()

	if err := pc.promotions.CreatePromotion(c.Request.Context(), &promo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

// UpdatePromotion godoc
// @Summary Update a promotion
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Promotion ID"
// @Param patch body models.PromotionPatch true "Fields to change"
// @Success 200 {object} models.Promotion
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/promotions/{id} [patch]
func (pc *PromotionController) UpdatePromotion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch models.PromotionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	promo, err := pc.promotions.UpdatePromotion(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promo)
}

// DeletePromotion godoc
// @Summary Delete a promotion
// @Tags admin
// @Param id path int true "Promotion ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/promotions/{id} [delete]
func (pc *PromotionController) DeletePromotion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := pc.promotions.DeletePromotion(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDiscounts godoc
// @Summary List all discount codes
// @Tags admin
// @Produce json
// @Success 200 {array} models.Discount
// @Security BearerAuth
// @Router /api/v1/protected/admin/discounts [get]
func (pc *PromotionController) ListDiscounts(c *gin.Context) {
	discounts, err := pc.promotions.ListDiscounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, discounts)
}

// GetDiscount godoc
// @Summary Get a discount code
// @Tags admin
// @Produce json
// @Param id path int true "Discount ID"
// @Success 200 {object} models.Discount
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/discounts/{id} [get]
func (pc *PromotionController) GetDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	discount, err := pc.promotions.GetDiscount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, discount)
}

// CreateDiscount godoc
// @Summary Create a discount code
// @Description Exactly one of percentage or value must be set. Codes are stored upper case and are unique. Dates are YYYY-MM-DD.
// @Tags admin
// @Accept json
// @Produce json
// @Param discount body models.DiscountInput true "Discount"
// @Success 201 {object} models.Discount
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/discounts [post]
func (pc *PromotionController) CreateDiscount(c *gin.Context) {
	var input models.DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	discount := input.Discount()

	if err := pc.promotions.CreateDiscount(c.Request.Context(), &discount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, discount)
}

// UpdateDiscount godoc
// @Summary Update a discount code
// @Description Apply only the supplied fields; the result must satisfy the same rules as creation
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Discount ID"
// @Param patch body models.DiscountPatch true "Fields to change"
// @Success 200 {object} models.Discount
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/discounts/{id} [patch]
func (pc *PromotionController) UpdateDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch models.DiscountPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	discount, err := pc.promotions.UpdateDiscount(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, discount)
}

// DeleteDiscount godoc
// @Summary Delete a discount code
// @Tags admin
// @Param id path int true "Discount ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/discounts/{id} [delete]
func (pc *PromotionController) DeleteDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := pc.promotions.DeleteDiscount(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
