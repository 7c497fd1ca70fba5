package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pet3d-backend/internal/middleware"
	"pet3d-backend/internal/services"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	JWTSecret      string
	CORSOrigins    []string
	MaxUploadBytes int64

	// StatusLimiter throttles model status polling. Nil disables it.
	StatusLimiter middleware.Limiter

	Users      *services.UserService
	Images     *services.ImageService
	Models     *services.ModelService
	PrintSizes *services.PrintSizeService
	Orders     *services.OrderService
	Payments   *services.PaymentService
}

// NewRouter wires middleware and every route under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.Metrics())
	router.Use(corsMiddleware(cfg.CORSOrigins))

	router.GET("/health", HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	images := NewImagesHandler(cfg.Images, cfg.MaxUploadBytes)
	models3d := NewModelsHandler(cfg.Models)
	sizes := NewPrintSizesHandler(cfg.PrintSizes)
	orders := NewOrdersHandler(cfg.Orders)
	payments := NewPaymentsHandler(cfg.Payments)
	users := NewUsersHandler(cfg.Users)
	admin := NewAdminHandler(cfg.Orders)

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthHandler)
	v1.GET("/print-sizes", sizes.ListPrintSizes)
	v1.GET("/print-sizes/:id", sizes.GetPrintSize)

	api := v1.Group("")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.Users))

	api.GET("/me", users.Me)

	api.POST("/pet-images", images.UploadImage)
	api.GET("/pet-images", images.ListImages)
	api.GET("/pet-images/:id", images.GetImage)
	api.DELETE("/pet-images/:id", images.DeleteImage)

	statusChain := []gin.HandlerFunc{models3d.CheckStatus}
	if cfg.StatusLimiter != nil {
		statusChain = append([]gin.HandlerFunc{middleware.RateLimit(cfg.StatusLimiter, middleware.KeyByUserAndRoute)}, statusChain...)
	}
	api.POST("/models", models3d.CreateModel)
	api.GET("/models", models3d.ListModels)
	api.GET("/models/:id", models3d.GetModel)
	api.GET("/models/:id/status", statusChain...)
	api.DELETE("/models/:id", models3d.DeleteModel)

	api.POST("/orders", orders.CreateOrder)
	api.GET("/orders", orders.ListOrders)
	api.GET("/orders/number/:order_number", orders.GetOrderByNumber)
	api.GET("/orders/:id", orders.GetOrder)
	api.POST("/orders/:id/cancel", orders.CancelOrder)
	api.POST("/orders/:id/payments", payments.InitiatePayment)
	api.GET("/orders/:id/payment", payments.GetPayment)
	api.POST("/payments/capture", payments.CapturePayment)

	adminGroup := api.Group("/admin", middleware.RequireAdmin())
	adminGroup.GET("/orders", admin.ListOrders)
	adminGroup.PATCH("/orders/:id/status", admin.UpdateOrderStatus)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
