package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the public HTTP surface on the router.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/healthz", handler.HealthzHandler)

	apiGroup := router.Group("/api")
	apiGroup.Use(RequestIDMiddleware())
	{
		apiGroup.GET("/evaluate", handler.EvaluateInfoHandler)
		apiGroup.POST("/evaluate", handler.EvaluateHandler)
		apiGroup.GET("/usage", handler.GetUsageHandler)
		apiGroup.POST("/usage", handler.RecordUsageHandler)
		apiGroup.POST("/checkout", handler.CheckoutHandler)
		apiGroup.POST("/webhooks/payment", handler.WebhookHandler)
	}
}
