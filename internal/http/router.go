package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go.ngs.io/panchanga-api/internal/config"
	"go.ngs.io/panchanga-api/internal/logging"
	"go.ngs.io/panchanga-api/internal/observability"
	"go.ngs.io/panchanga-api/internal/usecase"
)

// RouterOptions carries the router's optional collaborators.
type RouterOptions struct {
	Server  config.ServerConfig
	Logger  *zap.Logger
	Metrics *observability.Collector
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(svc *usecase.Service, opts RouterOptions) *gin.Engine {
	log := logging.OrNop(opts.Logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(log))

	// Setup CORS middleware.
	// Default to allow all origins if not specified.
	corsConfig := cors.DefaultConfig()
	if len(opts.Server.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.Server.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	if opts.Metrics != nil {
		router.Use(Metrics(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Create handler.
	handler := NewHandler(svc)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.Use(Timeout(opts.Server.Timeout()))

	// Panchanga facts and element windows.
	v1.GET("/panchanga", handler.GetPanchanga)
	v1.GET("/panchanga/windows", handler.GetWindows)

	// Positions and motion.
	v1.GET("/positions", handler.GetPositions)
	v1.GET("/motion", handler.GetMotion)
	v1.GET("/motion/stations", handler.GetStations)

	// Yogas.
	yogas := v1.Group("/yogas")
	yogas.GET("", handler.GetYogas)
	yogas.GET("/range", handler.GetYogasRange)
	yogas.GET("/rules", handler.GetRules)

	v1.GET("/navatara", handler.GetNavatara)

	return router
}
