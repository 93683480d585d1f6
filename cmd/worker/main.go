package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"feedsync/internal/config"
	"feedsync/internal/database"
	"feedsync/internal/logger"
	"feedsync/internal/mapping"
	"feedsync/internal/markets"
	"feedsync/internal/processor"
	"feedsync/internal/services/commerce"
	"feedsync/internal/services/feed"
	"feedsync/internal/transform"
	"feedsync/internal/worker"
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

	// Initialize pipeline
	catalogClient := commerce.NewClient(cfg.CommerceBaseURL, cfg.TenantID, logger)
	fetcher := commerce.NewFetcher(catalogClient, logger)

	tokens, err := feed.NewTokenSource(cfg.FeedClientEmail, cfg.FeedPrivateKey, cfg.FeedPrivateKeyID, cfg.FeedTokenURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize feed credentials: %v", err)
	}
	feedClient := feed.NewClient(cfg.FeedBaseURL, tokens, logger)
	dispatcher := feed.NewDispatcher(feedClient, logger)

	transformer := transform.New(resolver)
	proc := processor.New(cfg.TenantID, registry, transformer, fetcher, dispatcher, db, logger)

	// Initialize worker
	w := worker.New(cfg, logger, proc)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
