package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phoneGuide/app/echo-server/router"
	"phoneGuide/business/advisor"
	"phoneGuide/internal/middleware"
	"phoneGuide/internal/repository/gemini"
	psqlRepo "phoneGuide/internal/repository/postgres"
	redisRepo "phoneGuide/internal/repository/redis"
	"phoneGuide/internal/rest"
	"phoneGuide/pkg/config"
	"phoneGuide/pkg/database"
	redisdb "phoneGuide/pkg/database/redis"
	"phoneGuide/pkg/logger"
	"phoneGuide/pkg/metrics"
	"phoneGuide/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	sessionEvictInterval = 5 * time.Minute
	sessionMaxIdle       = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Phone Guide API", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	ctx := context.Background()

	aiClient, err := gemini.NewClient(ctx, cfg.Gemini)
	if err != nil {
		logger.Fatal("Failed to init AI client", "error", err)
	}

	// Init repo
	favoritesRepo := redisRepo.NewFavoritesRepository(redisClient)
	historyRepo := psqlRepo.NewSearchHistoryRepository(db)
	if err := historyRepo.Migrate(); err != nil {
		logger.Fatal("Failed to migrate search history", "error", err)
	}

	// Init service
	store := advisor.NewSessionStore()
	stopEviction := make(chan struct{})
	store.StartEviction(sessionEvictInterval, sessionMaxIdle, stopEviction)

	advisorService := advisor.NewService(aiClient, favoritesRepo, historyRepo, store)

	// Init handler
	sessionHandler := rest.NewSessionHandler(advisorService, cfg.JWT.SessionTTL)
	advisorHandler := rest.NewAdvisorHandler(advisorService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	sessionRequired := middleware.SessionMiddleware()
	api := e.Group("/api/v1")
	router.SetupSessionRoutes(api, sessionHandler)
	router.SetupAdvisorRoutes(api, advisorHandler, sessionRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	close(stopEviction)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
