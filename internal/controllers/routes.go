package controllers

import (
	"github.com/franciscosanchezn/gin-loyalty-api/internal/middleware"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Routes groups every handler mounted under /api/v1 and /oauth
type Routes struct {
	Authenticate gin.HandlerFunc
	OAuthToken   gin.HandlerFunc
	OrderFeed    gin.HandlerFunc

	Auth        *AuthController
	Menu        MenuController
	Promotions  *PromotionController
	Orders      *OrderController
	Loyalty     *LoyaltyController
	Newsletters *NewsletterController
	Operations  *OperationsController
	Clients     *ClientController
}

// Register mounts the public, customer and admin route groups on router
func (r *Routes) Register(router *gin.Engine) {
	router.POST("/oauth/token", r.OAuthToken)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/telegram", r.Auth.TelegramLogin)

		publicApi := v1.Group("/public")
		{
			publicApi.GET("/menu", r.Menu.ListMenu)
			publicApi.GET("/menu/:id", r.Menu.GetMenuItem)
			publicApi.GET("/promotions", r.Promotions.ActivePromotions)
			publicApi.GET("/promotions/discounts", r.Promotions.ActiveDiscounts)
			publicApi.GET("/stores", r.Menu.ListStores)
		}

		// Telegram init data or a bearer token
		protectedApi := v1.Group("/protected")
		protectedApi.Use(r.Authenticate)
		{
			protectedApi.GET("/me", r.Auth.Me)

			protectedApi.POST("/orders", r.Orders.PlaceOrder)
			protectedApi.GET("/orders/my", r.Orders.MyOrders)
			protectedApi.GET("/orders/:id", r.Orders.GetOrder)

			protectedApi.GET("/loyalty/balance", r.Loyalty.Balance)
			protectedApi.GET("/loyalty/history", r.Loyalty.History)
			protectedApi.POST("/loyalty/favorite", r.Loyalty.SaveFavorite)
			protectedApi.GET("/loyalty/favorite", r.Loyalty.GetFavorite)

			protectedApi.GET("/newsletter/subscription", r.Newsletters.GetSubscription)
			protectedApi.PUT("/newsletter/subscription", r.Newsletters.UpdateSubscription)

			adminApi := protectedApi.Group("/admin")
			adminApi.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminApi.POST("/menu", r.Menu.CreateMenuItem)
				adminApi.PATCH("/menu/:id", r.Menu.UpdateMenuItem)
				adminApi.DELETE("/menu/:id", r.Menu.DeleteMenuItem)

				adminApi.GET("/promotions", r.Promotions.ListPromotions)
				adminApi.POST("/promotions", r.Promotions.CreatePromotion)
				adminApi.PATCH("/promotions/:id", r.Promotions.UpdatePromotion)
				adminApi.DELETE("/promotions/:id", r.Promotions.DeletePromotion)

				adminApi.GET("/discounts", r.Promotions.ListDiscounts)
				adminApi.GET("/discounts/:id", r.Promotions.GetDiscount)
				adminApi.POST("/discounts", r.Promotions.CreateDiscount)
				adminApi.PATCH("/discounts/:id", r.Promotions.UpdateDiscount)
				adminApi.DELETE("/discounts/:id", r.Promotions.DeleteDiscount)

				adminApi.POST("/newsletter/send", r.Newsletters.Send)
				adminApi.GET("/export/orders", r.Operations.ExportOrders)
				adminApi.POST("/backups", r.Operations.CreateBackup)
				adminApi.GET("/backups/latest", r.Operations.LatestBackup)

				adminApi.GET("/clients", r.Clients.ListClients)
				adminApi.POST("/clients", r.Clients.CreateClient)
				adminApi.GET("/clients/:id", r.Clients.GetClient)
				adminApi.DELETE("/clients/:id", r.Clients.DeleteClient)

				adminApi.GET("/orders/feed", r.OrderFeed)
			}
		}
	}
}
