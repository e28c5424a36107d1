package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/config"
	"github.com/a2b-grocery/storefront/pkg/storefront"
)

func NewEngine(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return router
}

func InitializeRoutes(router *gin.Engine, app *storefront.App) {
	h := NewHandler(app)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		sessions := api.Group("/session")
		{
			sessions.GET("", h.GetSession)
			sessions.POST("/check", h.CheckCustomerExist)
			sessions.POST("/login", h.BeginLogin)
			sessions.POST("/verify", h.VerifyOTP)
			sessions.POST("/guest", h.LoginAsGuest)
			sessions.POST("/logout", h.Logout)
		}

		api.GET("/language", h.GetLanguage)
		api.PUT("/language", h.SetLanguage)
		api.GET("/geocode", h.ReverseGeocode)

		addresses := api.Group("/addresses")
		{
			addresses.GET("", h.GetAddresses)
			addresses.POST("", h.CreateAddress)
			addresses.POST("/refresh", h.RefreshAddresses)
			addresses.GET("/:id", h.GetAddress)
			addresses.PUT("/:id", h.UpdateAddress)
			addresses.DELETE("/:id", h.DeleteAddress)
			addresses.PUT("/:id/select", h.SelectAddress)
			addresses.PUT("/:id/default", h.SetDefaultAddress)
		}

		catalog := api.Group("/categories")
		catalog.Use(RequireAddress(app))
		{
			catalog.GET("", h.GetCategories)
			catalog.GET("/:id/products", h.BrowseProducts)
		}

		if app.Bag != nil {
			bag := api.Group("/bag")
			bag.Use(RequireAuth(app))
			{
				bag.GET("", h.GetBag)
				bag.POST("/refresh", h.RefreshBag)
				bag.POST("/items", h.AddToBag)
				bag.PUT("/items/:id", h.UpdateBagItem)
				bag.DELETE("/items/:id", h.RemoveFromBag)
			}
		}

		if app.Cart != nil {
			cart := api.Group("/cart")
			{
				cart.GET("", h.GetCart)
				cart.POST("/items", h.AddToCart)
				cart.PUT("/items/:id", h.UpdateCartItem)
				cart.DELETE("/items/:id", h.RemoveFromCart)
				cart.DELETE("", h.ClearCart)
			}
		}

		checkout := api.Group("/checkout")
		checkout.Use(RequireSession(app), RequireAddress(app))
		{
			checkout.GET("", h.GetCheckoutSummary)
			checkout.POST("", h.PlaceOrder)
		}

		orders := api.Group("/orders")
		orders.Use(RequireSession(app))
		{
			orders.GET("", h.GetOrders)
			orders.GET("/:id", h.GetOrder)
			orders.GET("/:id/track", h.TrackOrder)
			orders.PUT("/:id/cancel", h.CancelOrder)
		}
	}
}
