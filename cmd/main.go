package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/signalpost/leadcapture-backend/internal/crm"
	httpS "github.com/signalpost/leadcapture-backend/internal/http"
	"github.com/signalpost/leadcapture-backend/internal/http/handlers"
	"github.com/signalpost/leadcapture-backend/internal/observability"
	"github.com/signalpost/leadcapture-backend/internal/platform/config"
	"github.com/signalpost/leadcapture-backend/internal/platform/envutil"
	"github.com/signalpost/leadcapture-backend/internal/platform/hubspot"
	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

const serviceName = "leadcapture"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(envutil.String("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: envutil.String("DEPLOY_ENV", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Remote CRM client
	log.Info("Setting up HubSpot client from main...")
	crmClient, err := hubspot.New(log, cfg.HubSpotClientConfig())
	if err != nil {
		log.Error("Could not init HubSpot client", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	resolver := crm.NewResolver(log, crmClient, crm.ResolverConfig{
		SingleFlight: cfg.Capture.SingleFlight,
	})
	attacher := crm.NewAttacher(log, crmClient, crm.AttacherConfig{
		FallbackNoteBody: cfg.Capture.DefaultNoteBody,
	})
	upsertService := crm.NewUpsertService(log, resolver, attacher)

	// Handlers
	log.Info("Setting up handlers from main...")
	captureHandler := handlers.NewCaptureHandler(log, upsertService)
	healthHandler := handlers.NewHealthHandler()

	// Router
	log.Info("Setting up router from main...")
	server := httpS.NewServer(httpS.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSAllowOrigins: cfg.Server.CORSAllowOrigins,
		CaptureHandler:   captureHandler,
		HealthHandler:    healthHandler,
	})

	log.Info("Server listening", "port", cfg.Server.Port)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
