// Package gateway assembles the HTTP surface: middleware, handlers and routes.
package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"orderflow/internal/broadcast"
	"orderflow/internal/gateway/handlers"
	"orderflow/internal/gateway/middleware"
	"orderflow/internal/services/analytics"
	"orderflow/internal/services/menu"
	"orderflow/internal/services/orders"
	"orderflow/internal/services/promo"
	"orderflow/internal/services/reviews"
	"orderflow/internal/services/users"
	"orderflow/internal/utils"
)

type Dependencies struct {
	DB        *gorm.DB
	Hub       *broadcast.Hub
	JWT       *utils.JWTManager
	Orders    *orders.Service
	Menu      *menu.Service
	Promo     *promo.Service
	Reviews   *reviews.Service
	Users     *users.Service
	Analytics *analytics.Service
	// Tokens rejects logged out tokens; nil disables revocation.
	Tokens    *users.TokenDenylist

	CORSOrigin string
	// RateLimit is a limiter rate such as "60-M"; empty disables limiting.
	RateLimit string
	Log       zerolog.Logger
}

func NewRouter(deps Dependencies) (*gin.Engine, error) {
	handlers.UseJSONFieldNames()

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	corsMiddleware, err := middleware.CORS(deps.CORSOrigin)
	if err != nil {
		return nil, err
	}
	r.Use(corsMiddleware)

	orderHandler := handlers.NewOrderHTTPHandler(deps.Orders, deps.Log)
	promoHandler := handlers.NewPromoHTTPHandler(deps.Promo, deps.Log)
	menuHandler := handlers.NewMenuHTTPHandler(deps.Menu, deps.Log)
	reviewHandler := handlers.NewReviewHTTPHandler(deps.Reviews, deps.Log)
	authHandler := handlers.NewAuthHTTPHandler(deps.Users, deps.Log)
	analyticsHandler := handlers.NewAnalyticsHTTPHandler(deps.Analytics, deps.Log)
	wsHandler := handlers.NewWSHTTPHandler(deps.Hub, deps.Log)

	requireAuth := middleware.JWTAuth(deps.JWT, deps.Tokens)
	optionalAuth := middleware.OptionalAuth(deps.JWT, deps.Tokens)
	adminOnly := middleware.AdminOnly()

	// --- API Group ---
	api := r.Group("/api")
	if deps.RateLimit != "" {
		limit, err := middleware.RateLimit(deps.RateLimit)
		if err != nil {
			return nil, err
		}
		api.Use(limit)
	}
	api.Use(optionalAuth)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		menuGroup := api.Group("/menu")
		{
			menuGroup.GET("", menuHandler.ListMenuItems)
			menuGroup.GET("/categories", menuHandler.ListCategories)
			menuGroup.GET("/:id", menuHandler.GetMenuItem)
			menuGroup.GET("/:id/reviews", reviewHandler.ListMenuItemReviews)
			menuGroup.POST("", requireAuth, adminOnly, menuHandler.CreateMenuItem)
			menuGroup.PUT("/:id", requireAuth, adminOnly, menuHandler.UpdateMenuItem)
			menuGroup.DELETE("/:id", requireAuth, adminOnly, menuHandler.DeleteMenuItem)
		}

		ordersGroup := api.Group("/orders")
		{
			ordersGroup.POST("", orderHandler.CreateOrder)
			ordersGroup.GET("", requireAuth, adminOnly, orderHandler.ListOrders)
			ordersGroup.GET("/me", requireAuth, orderHandler.ListMyOrders)
			ordersGroup.GET("/:id", orderHandler.GetOrder)
			ordersGroup.GET("/:id/history", orderHandler.GetOrderHistory)
			ordersGroup.PUT("/:id/status", requireAuth, adminOnly, orderHandler.UpdateOrderStatus)
			ordersGroup.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		api.POST("/reviews", reviewHandler.CreateReview)

		promoGroup := api.Group("/promo-codes")
		{
			promoGroup.POST("/validate", promoHandler.ValidatePromoCode)
			promoGroup.POST("", requireAuth, adminOnly, promoHandler.CreatePromoCode)
			promoGroup.GET("", requireAuth, adminOnly, promoHandler.ListPromoCodes)
			promoGroup.PUT("/:id/deactivate", requireAuth, adminOnly, promoHandler.DeactivatePromoCode)
		}

		api.GET("/analytics/dashboard", requireAuth, adminOnly, analyticsHandler.Dashboard)
	}

	r.GET("/ws", wsHandler.Subscribe)
	r.GET("/health", healthCheckHandler(deps))

	return r, nil
}

func healthCheckHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK
		database := "up"

		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			database = "down"
		}

		c.JSON(httpStatus, gin.H{
			"status":      status,
			"message":     "Server is running",
			"database":    database,
			"subscribers": deps.Hub.Len(),
			"timestamp":   time.Now(),
		})
	}
}
