package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/signalpost/leadcapture-backend/internal/http/handlers"
	httpMW "github.com/signalpost/leadcapture-backend/internal/http/middleware"
	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	ServiceName      string
	CORSAllowOrigins []string

	CaptureHandler *httpH.CaptureHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "leadcapture"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSAllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.CaptureHandler != nil {
			api.POST("/capture", cfg.CaptureHandler.Capture)
		}
	}

	return r
}
