package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/HammadAli08/Portfolio-backend/internal/config"
	"github.com/HammadAli08/Portfolio-backend/internal/logger"
	"github.com/HammadAli08/Portfolio-backend/internal/rag"
	"github.com/HammadAli08/Portfolio-backend/middleware"
	"github.com/HammadAli08/Portfolio-backend/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())

	// Permissive CORS: the chat widget is embedded on the public portfolio
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Rate limiting only when Redis is configured; the limiter itself fails
	// open if Redis goes away later
	if rdb, err := config.NewRedisClient(cfg); err == nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
		logger.Info("Rate limiting enabled", "redis", cfg.RedisURL)
	} else if cfg.RedisURL != "" {
		logger.Warn("Rate limiting disabled", "error", err)
	}

	stats := rag.NewStats()
	holder := rag.NewHolder(func() (*rag.Pipeline, error) {
		return rag.NewPipeline(cfg)
	})

	// Warm the pipeline so the first visitor doesn't pay the connection cost
	if _, err := holder.Get(); err != nil {
		stats.SetIndexStatus("Error: " + err.Error())
		logger.Warn("Pipeline warm-up failed, will retry on first request", "error", err)
	} else {
		stats.SetIndexStatus("Ready (Pinecone)")
		stats.MarkReindexed(time.Now())
	}

	routes.SetupSystemRoutes(router, holder, stats, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		return rag.NewIndexBuilder(cfg).BuildIndex(ctx)
	})
	routes.SetupChatRoutes(router, holder, stats)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
