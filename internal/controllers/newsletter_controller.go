package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
)

type NewsletterController struct {
	newsletters services.NewsletterService
}

func NewNewsletterController(newsletters services.NewsletterService) *NewsletterController {
	return &NewsletterController{newsletters: newsletters}
}

// Send godoc
// @Summary Broadcast a newsletter
// @Description Records the newsletter and queues delivery to every subscribed user. Delivery happens after the response.
// @Tags admin
// @Accept json
// @Produce json
// @Param newsletter body object{title=string,message=string} true "Newsletter"
// @Success 202 {object} services.BroadcastResult
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/newsletter/send [post]
func (nc *NewsletterController) Send(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Title   string `json:"title" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and message are required")
		return
	}

	result, err := nc.newsletters.Send(c.Request.Context(), user.ID, req.Title, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// GetSubscription godoc
// @Summary Newsletter subscription
// @Tags newsletter
// @Produce json
// @Success 200 {object} models.UserSubscription
// @Security BearerAuth
// @Router /api/v1/protected/newsletter/subscription [get]
func (nc *NewsletterController) GetSubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	sub, err := nc.newsletters.GetSubscription(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpdateSubscription godoc
// @Summary Change newsletter subscription
// @Tags newsletter
// @Accept json
// @Produce json
// @Param subscription body object{subscribed=bool} true "Preference"
// @Success 200 {object} models.UserSubscription
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/newsletter/subscription [put]
func (nc *NewsletterController) UpdateSubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Subscribed *bool `json:"subscribed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "subscribed is required")
		return
	}

	sub, err := nc.newsletters.UpdateSubscription(c.Request.Context(), user.ID, *req.Subscribed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
