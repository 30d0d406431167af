package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/payment-system/risk-sdk/internal/handlers"
	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

func NewRouter(repo interfaces.PublicationRepository, publisher handlers.Publisher) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": telemetry.ServiceName})
	})

	riskHandler := handlers.NewRiskHandler(repo, publisher)
	r.POST("/risk/publish", riskHandler.PublishData)
	r.GET("/risk/publications/:id", riskHandler.GetPublication)

	return r
}
