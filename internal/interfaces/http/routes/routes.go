// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires the public storefront API and the admin API under
// one /api/v1 group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	setupPublicRoutes(rg, db, redisClient, cfg)
	setupAdminRoutes(rg, db, redisClient, cfg)
	setupWebhookRoutes(rg, db, cfg)
}

// setupPublicRoutes sets up the storefront-facing endpoints. Everything
// here works for anonymous sessions; auth is optional.
func setupPublicRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	couponHandler := handlers.NewCouponHandler(db, redisClient, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)
	orderHandler := handlers.NewOrderHandler(db, cfg)
	paymentHandler := handlers.NewPaymentHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:slug", categoryHandler.GetCategoryBySlug)
	}

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:productId", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}

	coupons := rg.Group("/coupons")
	{
		coupons.POST("/apply", couponHandler.ApplyCoupon)
		coupons.DELETE("/apply", couponHandler.RemoveCoupon)
		coupons.GET("/applied", couponHandler.GetAppliedCoupon)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkout.GET("", checkoutHandler.GetSummary)
		checkout.POST("", checkoutHandler.Submit)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("/:number", orderHandler.GetOrderByNumber)
	}

	rg.GET("/payment-methods", paymentHandler.GetPaymentMethods)
}

// setupAdminRoutes sets up the admin API. Every route requires an
// authenticated admin.
func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	couponHandler := handlers.NewCouponHandler(db, redisClient, cfg)
	orderHandler := handlers.NewOrderHandler(db, cfg)
	paymentHandler := handlers.NewPaymentHandler(db, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, redisClient, cfg)
	backupHandler := handlers.NewBackupHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.GET("", productHandler.AdminGetProducts)
			products.GET("/:id", productHandler.AdminGetProduct)
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.POST("/:id/duplicate", productHandler.AdminDuplicateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
			products.POST("/import", productHandler.AdminImportProducts)
			products.GET("/import/template", productHandler.AdminDownloadTemplate)
			products.GET("/export", productHandler.AdminExportProducts)
		}

		categories := admin.Group("/categories")
		{
			categories.GET("", categoryHandler.AdminGetCategories)
			categories.POST("", categoryHandler.AdminCreateCategory)
			categories.PUT("/:id", categoryHandler.AdminUpdateCategory)
			categories.DELETE("/:id", categoryHandler.AdminDeleteCategory)
		}

		coupons := admin.Group("/coupons")
		{
			coupons.GET("", couponHandler.AdminGetCoupons)
			coupons.POST("", couponHandler.AdminCreateCoupon)
			coupons.PUT("/:id", couponHandler.AdminUpdateCoupon)
			coupons.DELETE("/:id", couponHandler.AdminDeleteCoupon)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/:id", orderHandler.AdminGetOrder)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
			orders.POST("/:id/notes", orderHandler.AdminAddOrderNote)
			orders.DELETE("/:id/notes/:noteId", orderHandler.AdminDeleteOrderNote)
			orders.POST("/:id/items", orderHandler.AdminAddOrderItem)
			orders.PUT("/:id/items/:itemId", orderHandler.AdminUpdateOrderItem)
			orders.DELETE("/:id/items/:itemId", orderHandler.AdminRemoveOrderItem)
		}

		paymentMethods := admin.Group("/payment-methods")
		{
			paymentMethods.GET("", paymentHandler.AdminGetPaymentMethods)
			paymentMethods.POST("", paymentHandler.AdminCreatePaymentMethod)
			paymentMethods.PUT("/:id", paymentHandler.AdminUpdatePaymentMethod)
			paymentMethods.DELETE("/:id", paymentHandler.AdminDeletePaymentMethod)
		}

		analytics := admin.Group("/analytics")
		{
			analytics.GET("/visitors", analyticsHandler.GetVisitorStats)
			analytics.GET("/visits", analyticsHandler.GetVisits)
			analytics.GET("/sales", analyticsHandler.GetSalesStats)
			analytics.GET("/sales/export", analyticsHandler.ExportSalesCSV)
		}

		backups := admin.Group("/backups")
		{
			backups.GET("", backupHandler.ListBackups)
			backups.POST("", backupHandler.CreateBackup)
			backups.GET("/:id/download", backupHandler.DownloadBackup)
			backups.POST("/:id/restore", backupHandler.RestoreBackup)
			backups.DELETE("/:id", backupHandler.DeleteBackup)
		}
	}
}

// setupWebhookRoutes sets up payment provider callbacks. These carry
// their own signature verification instead of session or JWT auth.
func setupWebhookRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	webhookHandler := handlers.NewWebhookHandler(db, cfg)

	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.HandleStripeWebhook)
	}
}
