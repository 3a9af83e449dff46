// Command httpd runs the support-bot HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coldflow/supportbot/internal/api"
	"github.com/coldflow/supportbot/internal/chat"
	"github.com/coldflow/supportbot/internal/config"
	"github.com/coldflow/supportbot/internal/database"
	"github.com/coldflow/supportbot/internal/faq"
	"github.com/coldflow/supportbot/internal/llm"
	"github.com/coldflow/supportbot/internal/logger"
	"github.com/coldflow/supportbot/internal/matching"
	"github.com/coldflow/supportbot/internal/telemetry"
)

const (
	defaultConfigPath = "config.yml"
	shutdownTimeout   = 30 * time.Second
)

func main() {
	cfg, err := config.LoadWithDefaults[config.Config](
		config.GetConfigPath(defaultConfigPath),
		func(c *config.Config) { c.SetDefaults() },
	)
	if err != nil {
		// Config must load before the logger exists.
		panic(err)
	}
	if err = cfg.Validate(); err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting support-bot",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port))

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     strconv.Itoa(cfg.Database.Port),
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("failed to connect to database", logger.Error(err))
	}
	defer func() { _ = db.Close() }()

	prompts := database.NewPromptsRepository(db)
	faqs := database.NewFAQsRepository(db)
	sessions := database.NewSessionsRepository(db)

	weights := weightsFromConfig(cfg.Matching)
	var scorer matching.Scorer
	if cfg.Matching.Scorer == "basic" {
		scorer = matching.NewBasicScorer(weights)
	} else {
		scorer = matching.NewAdvancedScorer(weights, nil, nil)
	}
	selector := matching.NewSelector(scorer, weights, prompts, log)
	log.Info("matching engine initialized", logger.String("scorer", cfg.Matching.Scorer))

	ctx := context.Background()
	faqService, err := faq.NewService(ctx, faqs, sessions, log)
	if err != nil {
		log.Fatal("failed to build faq index", logger.Error(err))
	}

	generator := llm.NewClient(cfg.OpenAI, log)
	if !cfg.OpenAI.Enabled {
		log.Info("generative fallback disabled")
	}

	provider := telemetry.NewProvider()
	chatService := chat.NewService(selector, faqService, generator, sessions, provider, log)

	handler := api.NewHandler(chatService, prompts, faqs, faqService, sessions, db, scorer, weights, log)
	server := api.NewServer(handler, provider, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, log)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		log.Fatal("server error", logger.Error(err))
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(shutdownCtx); err != nil {
			log.Fatal("graceful shutdown failed", logger.Error(err))
		}

		log.Info("server stopped gracefully")
	}
}

// weightsFromConfig maps the configuration overrides onto scorer weights.
// Zero-valued fields fall back to the matching package defaults.
func weightsFromConfig(m config.MatchingConfig) matching.Weights {
	return matching.Weights{
		PhraseScore:           m.PhraseScore,
		ExactWordScore:        m.ExactWordScore,
		StemScore:             m.StemScore,
		SynonymScore:          m.SynonymScore,
		PartialScore:          m.PartialScore,
		FuzzyScore:            m.FuzzyScore,
		IrrelevantWordPenalty: m.IrrelevantWordPenalty,
		LengthMismatchPenalty: m.LengthMismatchPenalty,
		MinConfidence:         m.MinConfidenceThreshold,
		HighConfidence:        m.HighConfidenceThreshold,
		BasicMinScore:         m.BasicMinScore,
	}
}
