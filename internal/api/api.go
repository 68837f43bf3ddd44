package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/recopesa/intake-backend/internal/api/handlers"
	"github.com/recopesa/intake-backend/internal/api/middleware"
	"github.com/recopesa/intake-backend/internal/service"
)

type Services struct {
	Reports *service.ReportService
	Catalog *service.CatalogService
	Config  *service.ConfigService
	Exports *service.ExportService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Id"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	reportHandler := handlers.NewReportHandler(services.Reports, services.Exports)
	reportGroup := apiGroup.Group("/reports")
	{
		reportGroup.POST("", reportHandler.Create)
		reportGroup.GET("", reportHandler.List)
		reportGroup.GET("/summary", reportHandler.Summary)
		reportGroup.GET("/export/excel", reportHandler.ExportExcel)
		reportGroup.GET("/export/csv", reportHandler.ExportCSV)
		reportGroup.GET("/:id", reportHandler.Get)
		reportGroup.GET("/:id/pdf", reportHandler.Ticket)
		reportGroup.POST("/:id/items", reportHandler.AddItem)
		reportGroup.DELETE("/:id/items/:itemId", reportHandler.RemoveItem)
		reportGroup.PATCH("/:id/finish", reportHandler.Finish)
		reportGroup.PATCH("/:id/cancel", reportHandler.Cancel)
	}

	catalogHandler := handlers.NewCatalogHandler(services.Catalog)
	productGroup := apiGroup.Group("/products")
	{
		productGroup.POST("", catalogHandler.CreateProduct)
		productGroup.GET("", catalogHandler.ListProducts)
		productGroup.GET("/:id", catalogHandler.GetProduct)
		productGroup.PUT("/:id", catalogHandler.UpdateProduct)
		productGroup.DELETE("/:id", catalogHandler.DeleteProduct)
	}
	supplierGroup := apiGroup.Group("/suppliers")
	{
		supplierGroup.POST("", catalogHandler.CreateSupplier)
		supplierGroup.GET("", catalogHandler.ListSuppliers)
		supplierGroup.GET("/:id", catalogHandler.GetSupplier)
		supplierGroup.PUT("/:id", catalogHandler.UpdateSupplier)
		supplierGroup.DELETE("/:id", catalogHandler.DeleteSupplier)
	}
	userGroup := apiGroup.Group("/users")
	{
		userGroup.POST("", catalogHandler.CreateUser)
		userGroup.GET("", catalogHandler.ListUsers)
	}

	configHandler := handlers.NewConfigHandler(services.Config)
	apiGroup.GET("/config", configHandler.Get)
	apiGroup.PUT("/config", configHandler.Update)

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
