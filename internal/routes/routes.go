package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "eiti-matching-backend/internal/handlers"
	"eiti-matching-backend/internal/repository"
	service "eiti-matching-backend/internal/services/reconciliation"
	"eiti-matching-backend/internal/services/registry"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, registryURL string) {
	refRepo := repository.NewReferenceRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	matchService := service.NewService(
		refRepo,
		recordRepo,
		registry.NewFetcher(registryURL),
	)

	matchHandler := handler.NewMatchingHandler(matchService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Matching session routes
	sessions := api.Group("/sessions")
	sessions.POST("/upload", matchHandler.Upload)
	sessions.GET("/:sessionId", matchHandler.GetSessionProgress)
	sessions.GET("/:sessionId/records", matchHandler.ListDecisions)
	sessions.GET("/:sessionId/stats", matchHandler.GetStats)
	sessions.POST("/:sessionId/bulk-accept", matchHandler.BulkAccept)
	sessions.POST("/:sessionId/finalize", matchHandler.Finalize)
	sessions.GET("/:sessionId/download", matchHandler.Download)

	// Decision-level routes
	decisions := api.Group("/decisions")
	decisions.POST("/:id/accept", matchHandler.AcceptDecision)
	decisions.POST("/:id/reject", matchHandler.RejectDecision)

	// Registry routes
	reg := api.Group("/registry")
	{
		reg.GET("", matchHandler.SearchRegistry)
		reg.POST("/refresh", matchHandler.RefreshRegistry)
	}
}
