package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1.
// Команды требуют API-ключ, если ключи заданы, чтение открыто.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	commands := api.Group("")
	if len(h.cfg.APIKeys) > 0 {
		commands.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	}
	{
		commands.POST("/scenarios", h.startScenario)
		commands.POST("/epochs", h.runEpoch)
		commands.POST("/clock/advance", h.advance)
		commands.POST("/events/:id/resolve", h.resolveEvent)
	}

	api.GET("/events", h.listEvents)
	api.GET("/tasks", h.listTasks)
	api.GET("/units", h.listUnits)
	api.GET("/resources", h.listResources)
	api.GET("/snapshot", h.getSnapshot)
	api.GET("/context", h.getContext)
	api.GET("/initial-state", h.getInitialState)
	api.GET("/runs/:id/results", h.listResults)
	api.GET("/artifacts/:hash", h.getArtifact)

	api.GET("/system/health", h.healthCheck)
}
