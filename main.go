// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/siftlabs/leadsift/internal/api/handlers"
	"github.com/siftlabs/leadsift/internal/api/middleware"
	"github.com/siftlabs/leadsift/internal/config"
	"github.com/siftlabs/leadsift/internal/database"
	"github.com/siftlabs/leadsift/internal/enrich"
	"github.com/siftlabs/leadsift/internal/genai"
	"github.com/siftlabs/leadsift/internal/logging"
	"github.com/siftlabs/leadsift/internal/provider"
	"github.com/siftlabs/leadsift/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalln(err)
	}
	defer logger.Sync()

	db, err := database.Open(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Fatalw("failed to open database", "error", err)
	}
	dbQueries := database.New(db)

	registry := provider.NewRegistry()
	registry.Register("linkedin", provider.NewLinkedIn(provider.LinkedInConfig{
		APIHost: cfg.RapidAPIHost,
		APIKey:  cfg.RapidAPIKey,
		RPS:     cfg.ProviderRPS,
	}, logger))

	var refiner enrich.Refiner
	if cfg.GenAIServiceURL != "" {
		refiner = genai.NewClient(cfg.GenAIServiceURL, logger)
	} else {
		logger.Info("GENAI_SERVICE_URL not set, lead refinement disabled")
	}

	guesser := enrich.NewEmailGuesser(enrich.DefaultUniversityDomains)
	enricher := enrich.NewEnricher(dbQueries, registry, guesser, refiner, logger)

	w := worker.NewWorker(dbQueries, enricher, logger)
	w.Start(cfg.WorkerInterval)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	h := handlers.NewHandler(dbQueries, db, registry, enricher, w, logger)

	r.GET("/health", h.HealthCheckHandler)

	api := r.Group("/api", middleware.RequireUser())
	api.POST("/posts", h.CreatePostHandler)
	api.GET("/posts", h.ListPostsHandler)
	api.GET("/posts/:id", h.GetPostHandler)
	api.POST("/posts/:id/process", h.ProcessPostHandler)
	api.GET("/posts/:id/leads", h.ListPostLeadsHandler)
	api.GET("/leads", h.ListLeadsHandler)
	api.PUT("/leads/:id/tags", h.UpdateLeadTagsHandler)
	api.POST("/leads/export", h.MarkLeadsExportedHandler)

	logger.Infow("starting server", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
