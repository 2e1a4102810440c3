package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/auth"
)

func SetupRoutes(router *gin.Engine, handler *Handler, tokens *auth.Tokens) {
	requireAdmin := auth.RequireAdmin(tokens)

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/categories", handler.GetCategories)
		api.GET("/roi/estimate", handler.EstimateROI)

		api.GET("/properties", handler.ListProperties)
		api.GET("/properties.geojson", handler.PropertiesGeoJSON)
		api.GET("/properties/:slug", handler.GetProperty)
		api.GET("/properties/:slug/estimate", handler.EstimateProperty)
		api.GET("/properties/:slug/nearby", handler.NearbyProperties)

		api.POST("/leads", handler.CreateLead)

		api.POST("/auth/login", handler.Login)
		api.GET("/auth/me", requireAdmin, handler.Me)
	}

	admin := api.Group("/admin", requireAdmin)
	{
		admin.GET("/stats", handler.GetStats)

		admin.GET("/properties", handler.ListProperties)
		admin.POST("/properties", handler.CreateProperty)
		admin.POST("/properties/geocode", handler.GeocodeProperties)
		admin.PUT("/properties/:id", handler.UpdateProperty)
		admin.DELETE("/properties/:id", handler.DeleteProperty)

		admin.GET("/leads", handler.ListLeads)
		admin.DELETE("/leads/:id", handler.DeleteLead)

		admin.GET("/telegram", handler.GetTelegramConfig)
		admin.PUT("/telegram", handler.UpdateTelegramConfig)
		admin.POST("/telegram/test", handler.TestTelegramConfig)
	}
}

// NewRouter builds the gin engine with recovery, request logging and CORS.
// An origin of "*" allows every origin.
func NewRouter(handler *Handler, tokens *auth.Tokens, corsOrigins []string, logger *logrus.Logger) *gin.Engine {
	if logger == nil {
		logger = logrus.New()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors.New(corsConfig(corsOrigins)))
	SetupRoutes(router, handler, tokens)
	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	var allowed []string
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = allowed
	return config
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}
