package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tailtown/internal/config"
	"tailtown/internal/database"
	"tailtown/internal/logging"
	"tailtown/internal/metrics"
	"tailtown/internal/middleware"
	"tailtown/internal/modules/board"
	"tailtown/internal/modules/gingr"
	"tailtown/internal/modules/registry"
	"tailtown/internal/modules/reservation"
	"tailtown/internal/repository"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatal(err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db,
		repository.ResourceModel(),
		repository.ReservationModel(),
		repository.RecurrencePatternModel(),
	); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	metrics.Register()

	reservationRepo := repository.NewReservationRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	recurrenceRepo := repository.NewRecurrenceRepository(db)

	hub := board.NewHub()
	defer hub.Close()

	reservationService := reservation.NewService(
		reservationRepo,
		resourceRepo,
		recurrenceRepo,
		hub,
		logger,
		reservation.Options{
			TxRetries:    cfg.Booking.TxRetries,
			MaxInstances: cfg.Booking.MaxInstances,
			HorizonDays:  cfg.Booking.HorizonDays,
		},
	)
	reservationHandler := reservation.NewHandler(reservationService)

	registryService := registry.NewService(resourceRepo)
	registryHandler := registry.NewHandler(registryService)

	gingrService := gingr.NewService(reservationService, reservationRepo, resourceRepo, logger)
	gingrHandler := gingr.NewHandler(gingrService)

	boardHandler := board.NewHandler(hub, logger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Tenant-ID")
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Tenant())
	{
		reservationHandler.RegisterRoutes(v1)
		registryHandler.RegisterRoutes(v1)
		gingrHandler.RegisterRoutes(v1)
		boardHandler.RegisterRoutes(v1)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info().Str("addr", addr).Msg("starting api server")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
