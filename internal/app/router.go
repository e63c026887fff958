package app

import (
	"github.com/gin-gonic/gin"

	"cloudpasture.io/maintwatch/internal/api/handlers"
	"cloudpasture.io/maintwatch/internal/api/middleware"
	"cloudpasture.io/maintwatch/internal/config"
)

// healthRoute stays anonymous even when an API key is configured.
const healthRoute = "/api/v1/health"

func newRouter(cfg *config.Config, server *handlers.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(middleware.APIKey(cfg.Server.APIKey, healthRoute))

	v1 := router.Group("/api/v1")
	v1.GET("/health", server.Health)
	v1.GET("/maintenance-configurations", server.GetConfigurations)
	v1.GET("/maintenance-configurations/vm-status", server.GetConfigurationVMStatus)
	v1.GET("/maintenance-configurations/:name/vms", server.GetConfigurationVMs)
	v1.GET("/patch-history", server.GetPatchHistory)
	v1.GET("/virtual-machines/:name/diagnostics", server.GetVMDiagnostics)
	v1.POST("/query", server.PostQuery)

	return router
}
