package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/phdigest/config"
	"sjsage522/phdigest/internal/mailer"
	"sjsage522/phdigest/internal/scraper"
	"sjsage522/phdigest/internal/summarizer"
	"sjsage522/phdigest/logger"
	"sjsage522/phdigest/services/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration before touching the network
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("recipients", len(cfg.Recipients)).
		Int("product_count", cfg.ProductCount).
		Msg("Starting digest run")

	// A shutdown signal cancels in-flight requests; the scheduler's
	// next invocation is the retry mechanism
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(
		cfg,
		scraper.New(cfg.ProductHuntURL, cfg.ProductCount, cfg.HTTPTimeout),
		summarizer.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.HTTPTimeout),
		mailer.NewClient(cfg.ResendAPIKey, cfg.FromEmail, cfg.HTTPTimeout),
	)

	if err := p.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Digest run failed")
		return 1
	}

	log.Info().Msg("Digest run completed")
	return 0
}
