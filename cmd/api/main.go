package main

import (
	"log"

	"feedsync/internal/api"
	"feedsync/internal/config"
	"feedsync/internal/database"
	"feedsync/internal/logger"
	"feedsync/internal/mapping"
	"feedsync/internal/markets"
	"feedsync/internal/processor"
	"feedsync/internal/services/commerce"
	"feedsync/internal/services/feed"
	"feedsync/internal/transform"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel, cfg.Env)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Load static configuration
	registry, err := markets.Load(cfg.MarketsConfigPath)
	if err != nil {
		logger.Fatal("Failed to load market configuration: %v", err)
	}
	resolver, err := mapping.Load(cfg.MappingsConfigPath)
	if err != nil {
		logger.Fatal("Failed to load attribute mapping configuration: %v", err)
	}

	// Initialize catalog fetcher
	catalogClient := commerce.NewClient(cfg.CommerceBaseURL, cfg.TenantID, logger)
	fetcher := commerce.NewFetcher(catalogClient, logger)

	// Initialize feed dispatcher
	tokens, err := feed.NewTokenSource(cfg.FeedClientEmail, cfg.FeedPrivateKey, cfg.FeedPrivateKeyID, cfg.FeedTokenURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize feed credentials: %v", err)
	}
	feedClient := feed.NewClient(cfg.FeedBaseURL, tokens, logger)
	dispatcher := feed.NewDispatcher(feedClient, logger)

	// Initialize event processor
	transformer := transform.New(resolver)
	proc := processor.New(cfg.TenantID, registry, transformer, fetcher, dispatcher, db, logger)

	// Initialize API server
	server, err := api.New(cfg, logger, db, proc)
	if err != nil {
		logger.Fatal("Failed to initialize server: %v", err)
	}

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
