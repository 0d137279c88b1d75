package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders services.OrderService
}

func NewOrderController(orders services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// PlaceOrder godoc
// @Summary Place an order
// @Description Prices the cart, applies an optional discount code and credits one loyalty point per 100 spent
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.PlaceOrderRequest true "Cart"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError "empty cart, bad quantity, unavailable item, bad discount or pickup too soon"
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError "unknown menu item or store"
// @Failure 409 {object} models.APIError "discount used up concurrently"
// @Security BearerAuth
// @Router /api/v1/protected/orders [post]
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	order, err := oc.orders.PlaceOrder(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// MyOrders godoc
// @Summary List my orders
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/protected/orders/my [get]
func (oc *OrderController) MyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orders, err := oc.orders.ListUserOrders(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get an order
// @Description Owners see their own orders, admins see every order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
