package http

import (
	"rental-service/internal/metrics"
	"rental-service/internal/middleware"
	"rental-service/internal/service"
	"rental-service/internal/transport/http/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Services struct {
	Availability *service.AvailabilityService
	Catalog      *service.CatalogService
	Bundles      *service.BundleService
	Orders       service.OrderService
}

func Router(svc Services, limiter *middleware.RateLimiter, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(metrics.PrometheusMiddleware("rental-service"))
	r.Use(middleware.Identity())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	availabilityHandler := handlers.NewAvailabilityHandler(svc.Availability, log)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, svc.Bundles, log)
	orderHandler := handlers.NewOrderHandler(svc.Orders, log)

	api := r.Group("/api/v1")
	if limiter != nil {
		api.Use(limiter.Middleware())
	}

	// Публичная витрина
	api.GET("/products", catalogHandler.ListProducts)
	api.GET("/products/:id", catalogHandler.GetProduct)
	api.POST("/availability", availabilityHandler.Check)
	api.GET("/bundles/:id/add-to-cart", catalogHandler.GetBundleCart)

	// Заказы: создание доступно гостям, список требует идентификации
	api.POST("/orders", orderHandler.CreateOrder)
	api.GET("/orders", orderHandler.ListOrders)
	api.GET("/orders/:id", orderHandler.GetOrder)
	api.POST("/orders/:id/cancel", orderHandler.CancelOrder)

	// Админка: роль проверяется по заголовку на каждом маршруте
	adminOnly := middleware.AdminRequired()
	api.POST("/products", adminOnly, catalogHandler.CreateProduct)
	api.PATCH("/products/:id", adminOnly, catalogHandler.UpdateProduct)
	api.DELETE("/products/:id", adminOnly, catalogHandler.DeleteProduct)
	api.PUT("/bundles/:id/items", adminOnly, catalogHandler.UpdateBundle)
	api.GET("/products/stocks", adminOnly, catalogHandler.StockReport)
	api.POST("/orders/:id/confirm", adminOnly, orderHandler.ConfirmOrder)
	api.POST("/orders/:id/complete", adminOnly, orderHandler.CompleteOrder)

	return r
}
