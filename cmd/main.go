package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"partsportal/docs"
	"partsportal/internal/caching"
	"partsportal/internal/config"
	"partsportal/internal/handlers"
	"partsportal/internal/jobs"
	"partsportal/internal/middleware"
	"partsportal/internal/odata"
	"partsportal/internal/query"
	"partsportal/internal/services"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("PARTSPORTAL_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(parseLevel(cfg.Server.LogLevel))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	backendMetrics := odata.NewMetrics(registry)

	// Backend client and services
	backend := odata.NewClient(cfg.Backend, backendMetrics)
	partsService := services.NewPartsService(backend, query.DefaultSchema())
	inventoryService := services.NewInventoryService(backend)

	// Redis rate limiter
	var limiter caching.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = caching.NewRedisRateLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer limiter.Close()
	}

	// Attachment storage
	attachmentService, err := services.NewMinioService(cfg.Minio)
	if err != nil {
		log.Warnf("Attachments disabled: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := attachmentService.EnsureBucketExists(ctx); err != nil {
			log.Warnf("Failed to ensure attachment bucket %s: %v", cfg.Minio.Bucket, err)
		}
		cancel()
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	probe := jobs.NewBackendProbe(backend)
	if err := scheduler.AddJob(jobs.BackendProbeJob, cfg.Jobs.BackendProbeInterval(), probe.Run); err != nil {
		log.Fatalf("Failed to register backend probe: %v", err)
	}
	scheduler.Start()

	// Handlers
	partsHandlers := handlers.NewPartsHandlers(partsService)
	inventoryHandlers := handlers.NewInventoryHandlers(inventoryService)
	var limiterPinger handlers.Pinger
	if limiter != nil {
		limiterPinger = limiter
	}
	healthHandlers := handlers.NewHealthHandlers(probe, limiterPinger, scheduler, version)

	e := newServer(cfg)

	// Health, metrics and docs (no auth required)
	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Protected routes (require a bearer token)
	protected := []echo.MiddlewareFunc{
		middleware.BearerToken(),
		middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window()),
	}

	e.GET("/parts", partsHandlers.ListParts, protected...)
	e.GET("/parts-client-side", partsHandlers.ListPartsClientSide, protected...)
	e.POST("/m_Inventory", inventoryHandlers.CreateInventory, protected...)
	e.PATCH("/m_Instance/:id/spare-value", inventoryHandlers.UpdateSpareValue, protected...)

	if attachmentService != nil {
		attachmentHandlers := handlers.NewAttachmentHandlers(attachmentService)
		e.POST("/attachments", attachmentHandlers.Upload, protected...)
		e.GET("/attachments/*", attachmentHandlers.Download, protected...)
		e.DELETE("/attachments/*", attachmentHandlers.Delete, protected...)
	}

	// Start server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("partsportal v%s starting on port %d (backend %s)", version, cfg.Server.Port, cfg.Backend.BaseURL)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Errorf("Scheduler shutdown failed: %v", err)
	}
}

// newServer creates the Echo instance with the global middleware chain
func newServer(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(parseLevel(cfg.Server.LogLevel))
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Runs before routing so "/parts/" resolves to "/parts"
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(middleware.VersionHeader(middleware.APIVersion))

	return e
}

func parseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
