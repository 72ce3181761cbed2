package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/marketloop/booking-api/api/swagger"
	"github.com/marketloop/booking-api/internal/handler"
	"github.com/marketloop/booking-api/internal/middleware"
	"github.com/marketloop/booking-api/internal/repository"
	"github.com/marketloop/booking-api/internal/service"
	"github.com/marketloop/booking-api/pkg/cache"
	"github.com/marketloop/booking-api/pkg/config"
	"github.com/marketloop/booking-api/pkg/database"
	"github.com/marketloop/booking-api/pkg/logger"
	corsmiddleware "github.com/marketloop/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/marketloop/booking-api/pkg/middleware/requestid"
	"github.com/marketloop/booking-api/pkg/storage"
)

// @title Booking Capacity API
// @version 1.0.0
// @description Availability windows, slot capacity and booking lifecycle for service vendors
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The capacity cache is display-only; the engine runs without it.
		logr.Sugar().Warnw("redis unavailable, capacity cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	reportStore, err := storage.NewLocalStorage(cfg.Report.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signingSecret := cfg.Report.SigningSecret
	if signingSecret == "" {
		signingSecret = uuid.NewString()
		logr.Sugar().Warnw("REPORT_SIGNING_SECRET not set, download links will not survive restarts")
	}
	reportSigner := storage.NewSignedURLSigner(signingSecret, cfg.Report.DownloadTTL)

	windowRepo := repository.NewAvailabilityRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	productRepo := repository.NewProductRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	holdRepo := repository.NewHoldRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	capacitySvc := service.NewCapacityService(ledgerRepo, windowRepo, cacheRepo, cfg.Booking.ReserveWait, metricsSvc, logr)
	availabilitySvc := service.NewAvailabilityService(windowRepo, capacitySvc, cacheRepo, cfg.Booking.CapacityCacheTTL, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, productRepo, employeeRepo, capacitySvc, ledgerRepo, holdRepo, validate, logr)
	holdSvc := service.NewHoldService(holdRepo, productRepo, capacitySvc, cfg.Booking.HoldTTL, cfg.Booking.SweepInterval, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(bookingRepo, productRepo, employeeRepo, reportStore, reportSigner, cfg.Report.Workers, validate, logr)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	holdHandler := handler.NewHoldHandler(holdSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	holdSvc.StartSweeper(ctx)
	reportSvc.Start(ctx)
	defer reportSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/vendors/:vendorId/availability-windows", availabilityHandler.List)
		api.GET("/vendors/:vendorId/time-slots", availabilityHandler.TimeSlots)
		api.POST("/availability-windows", availabilityHandler.Create)
		api.GET("/availability-windows/:id", availabilityHandler.Get)
		api.PUT("/availability-windows/:id", availabilityHandler.Update)
		api.DELETE("/availability-windows/:id", availabilityHandler.Delete)

		api.GET("/vendors/:vendorId/employees", employeeHandler.List)
		api.POST("/employees", employeeHandler.Create)
		api.GET("/employees/:id", employeeHandler.Get)
		api.PUT("/employees/:id", employeeHandler.Update)
		api.DELETE("/employees/:id", employeeHandler.Delete)

		api.GET("/bookings", bookingHandler.List)
		api.POST("/bookings", bookingHandler.Create)
		api.GET("/bookings/:id", bookingHandler.Get)
		api.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
		api.POST("/bookings/:id/cancel", bookingHandler.Cancel)
		api.POST("/bookings/:id/reschedule", bookingHandler.Reschedule)
		api.GET("/order-lines/:orderLineId/booking", bookingHandler.GetByOrderLine)

		api.POST("/holds", holdHandler.SelectSlot)
		api.GET("/holds/:id", holdHandler.Get)
		api.DELETE("/holds/:id", holdHandler.Release)
		api.POST("/holds/:id/convert", bookingHandler.ConvertHold)

		api.POST("/reports", reportHandler.Create)
		api.GET("/reports/download", reportHandler.Download)
		api.GET("/reports/:id", reportHandler.Get)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		logr.Sugar().Infow("shutting down")
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
