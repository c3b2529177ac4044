package api_gateway

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/miniguru-commerce/internal/api_gateway/handler"
	"github.com/miniguru-commerce/internal/api_gateway/middleware"
)

type handlers struct {
	wallets  *handler.WalletHandler
	orders   *handler.OrderHandler
	products *handler.ProductHandler
	videos   *handler.VideoHandler
	auth     *handler.AuthHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, jwtSecret []byte, h handlers, checks map[string]HealthCheck) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		// Password reset is the only unauthenticated surface
		auth := v1.Group("/auth")
		{
			auth.POST("/password-reset", h.auth.RequestReset)
			auth.POST("/password-reset/confirm", h.auth.ConfirmReset)
		}

		authenticated := v1.Group("", middleware.Authenticate(jwtSecret))

		wallets := authenticated.Group("/wallet")
		{
			wallets.POST("", h.wallets.Create)
			wallets.GET("", h.wallets.Get)
			wallets.GET("/transactions", h.wallets.ListTransactions)
			wallets.GET("/history", h.wallets.History)
			wallets.POST("/topups", h.wallets.CreateTopUp)
			wallets.POST("/topups/verify", h.wallets.VerifyTopUp)
		}

		orders := authenticated.Group("/orders")
		{
			orders.POST("", h.orders.Place)
			orders.GET("", h.orders.List)
			orders.GET("/:id", h.orders.Get)
		}

		products := authenticated.Group("/products")
		{
			products.GET("", h.products.List)
			products.GET("/:id", h.products.Get)
		}
		authenticated.GET("/categories", h.products.ListCategories)

		videos := authenticated.Group("/videos")
		{
			videos.POST("", h.videos.Submit)
			videos.GET("/mine", h.videos.ListMine)
		}

		admin := authenticated.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/orders", h.orders.ListAll)
			admin.POST("/products", h.products.Create)
			admin.PATCH("/products/:id", h.products.Update)
			admin.DELETE("/products/:id", h.products.Delete)
			admin.POST("/products/:id/restock", h.products.Restock)
			admin.POST("/categories", h.products.CreateCategory)
			admin.GET("/videos/pending", h.videos.ListPending)
			admin.GET("/videos/:id", h.videos.Get)
			admin.POST("/videos/:id/approve", h.videos.Approve)
			admin.POST("/videos/:id/reject", h.videos.Reject)
		}
	}

	r.GET("/health", liveness)
	r.GET("/ready", readiness(checks))
}
