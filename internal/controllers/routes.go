package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-bistro-api/internal/auth"
	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterConfig holds the settings the HTTP layer needs
type RouterConfig struct {
	JWTSecret     string
	CORSOrigins   []string
	SecureCookies bool
}

// SetupRoutes wires services, controllers and middleware onto the router
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg RouterConfig) {
	secret := []byte(cfg.JWTSecret)

	catalogService := services.NewCatalogService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db)
	userService := services.NewUserService(db)
	clientService := services.NewClientService(db)
	oauthService := auth.NewOAuthService(db, cfg.JWTSecret)

	catalogController := NewCatalogController(catalogService, userService)
	cartController := NewCartController(cartService, catalogService)
	orderController := NewOrderController(orderService, cartService)
	accountController := NewAccountController(userService, catalogService, orderService)
	authController := NewAuthController(userService, cfg.JWTSecret)
	clientController := NewClientController(clientService)

	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", healthCheckHandler)
	router.POST("/oauth/token", oauthService.HandleToken)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Session(cfg.SecureCookies), middleware.Partial(), middleware.OptionalAuth(secret))
	{
		v1.GET("/categories", catalogController.ListCategories)
		v1.GET("/categories/:slug/dishes", catalogController.ListDishes)
		v1.GET("/allergens", catalogController.ListAllergens)
		v1.GET("/dishes", catalogController.ListDishes)
		v1.GET("/dishes/:slug", catalogController.GetDish)

		cart := v1.Group("/cart")
		{
			cart.GET("", cartController.GetCart)
			cart.DELETE("", cartController.ClearCart)
			cart.GET("/count", cartController.CartCount)
			cart.POST("/dishes/:slug", cartController.AddDish)
			cart.PUT("/items/:id", cartController.UpdateItem)
			cart.DELETE("/items/:id", cartController.RemoveItem)
		}

		v1.POST("/orders", orderController.Checkout)

		authApi := v1.Group("/auth")
		{
			authApi.POST("/register", authController.Register)
			authApi.POST("/login", authController.Login)
		}

		account := v1.Group("/account")
		account.Use(middleware.JWTAuth(secret))
		{
			account.GET("", accountController.GetProfile)
			account.PUT("", accountController.UpdateProfile)
			account.GET("/allergens", accountController.GetAllergens)
			account.PUT("/allergens", accountController.UpdateAllergens)
			account.GET("/recommendations", accountController.Recommendations)
			account.GET("/orders", accountController.ListOrders)
			account.GET("/orders/:id", accountController.GetOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(secret), middleware.RequireRole("admin"))
		{
			admin.POST("/categories", catalogController.CreateCategory)
			admin.POST("/dishes", catalogController.CreateDish)
			admin.PUT("/dishes/:slug", catalogController.UpdateDish)

			admin.GET("/orders", orderController.ListOrders)
			admin.GET("/orders/export", orderController.ExportOrders)
			admin.PATCH("/orders/:id/status", orderController.UpdateStatus)

			admin.POST("/clients", clientController.CreateClient)
			admin.GET("/clients", clientController.ListClients)
			admin.DELETE("/clients/:id", clientController.DeleteClient)
		}
	}
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-bistro-api",
	})
}
