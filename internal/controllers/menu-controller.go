package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MenuController handles HTTP requests related to the catalog
type MenuController interface {
	// ListMenu retrieves the items currently on sale
	ListMenu(c *gin.Context)
	// GetMenuItem retrieves a menu item by its ID
	GetMenuItem(c *gin.Context)
	// CreateMenuItem creates a new menu item
	CreateMenuItem(c *gin.Context)
	// UpdateMenuItem applies a partial update to a menu item
	UpdateMenuItem(c *gin.Context)
	// DeleteMenuItem deletes a menu item by its ID
	DeleteMenuItem(c *gin.Context)
	// ListStores retrieves the pickup locations
	ListStores(c *gin.Context)
}

type menuController struct {
	menu   services.MenuService
	stores services.StoreService
}

// NewMenuController creates a new instance of MenuController
func NewMenuController(menu services.MenuService, stores services.StoreService) MenuController {
	return &menuController{menu: menu, stores: stores}
}

// ListMenu godoc
// @Summary List the menu
// @Description Get all available menu items, optionally filtered by category
// @Tags menu
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {array} models.MenuItem
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/menu [get]
func (mc *menuController) ListMenu(c *gin.Context) {
	items, err := mc.menu.ListAvailable(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMenuItem godoc
// @Summary Get menu item by ID
// @Tags menu
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.MenuItem
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/menu/{id} [get]
func (mc *menuController) GetMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := mc.menu.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateMenuItem godoc
// @Summary Create a menu item
// @Description Create a new menu item. Names are unique.
// @Tags admin
// @Accept json
// @Produce json
// @Param item body models.MenuItemInput true "Menu item"
// @Success 201 {object} models.MenuItem
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/menu [post]
func (mc *menuController) CreateMenuItem(c *gin.Context) {
	var input models.MenuItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	item := input.MenuItem()

	if err := mc.menu.CreateItem(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem godoc
// @Summary Update a menu item
// @Description Apply only the supplied fields. Existing orders keep their purchase price.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Menu item ID"
// @Param patch body models.MenuItemPatch true "Fields to change"
// @Success 200 {object} models.MenuItem
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/menu/{id} [patch]
func (mc *menuController) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch models.MenuItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	item, err := mc.menu.UpdateItem(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem godoc
// @Summary Delete a menu item
// @Description Items referenced by orders cannot be deleted; mark them unavailable instead
// @Tags admin
// @Param id path int true "Menu item ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/menu/{id} [delete]
func (mc *menuController) DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := mc.menu.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStores godoc
// @Summary List stores
// @Tags menu
// @Produce json
// @Success 200 {array} models.Store
// @Router /api/v1/public/stores [get]
func (mc *menuController) ListStores(c *gin.Context) {
	stores, err := mc.stores.ListStores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}
