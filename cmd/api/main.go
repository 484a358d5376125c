package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/config"
	"github.com/noah-isme/gema-play-api/internal/database"
	"github.com/noah-isme/gema-play-api/internal/events"
	"github.com/noah-isme/gema-play-api/internal/handler"
	"github.com/noah-isme/gema-play-api/internal/learning"
	"github.com/noah-isme/gema-play-api/internal/middleware"
	"github.com/noah-isme/gema-play-api/internal/repository"
	"github.com/noah-isme/gema-play-api/internal/router"
	"github.com/noah-isme/gema-play-api/internal/service"
	"github.com/noah-isme/gema-play-api/internal/session"
	"github.com/noah-isme/gema-play-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "gema-play-api").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := ai.NewProvider(ctx, ai.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLMAPIKey(),
		Timeout:  cfg.LLM.Timeout,
		Retry: ai.RetryConfig{
			MaxAttempts: cfg.LLM.MaxAttempts,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2,
		},
	}, logger)
	if err != nil {
		log.Fatalf("failed to create llm provider: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	sessionCfg := session.Config{TTL: cfg.SessionTTL}
	var store session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		store = session.NewRedisStore(redisClient, "", sessionCfg, logger)
	default:
		memoryStore := session.NewMemoryStore(sessionCfg, logger)
		session.StartSweeper(ctx, memoryStore, cfg.SessionSweepInterval, logger)
		store = memoryStore
	}

	var lookup learning.Lookup = learning.NewStaticLookup(learning.DefaultCatalogue()...)
	if cfg.DatabaseURL != "" {
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		conceptRepo := repository.NewConceptRepository(db)
		if _, err := learning.Seed(ctx, conceptRepo, "computer_science", learning.DefaultCatalogue()...); err != nil {
			logger.Warn().Err(err).Msg("failed to seed concept catalogue")
		}
		lookup = learning.NewCatalogLookup(conceptRepo, lookup, logger)
	}
	if redisClient != nil {
		lookup = learning.NewCachedLookup(lookup, redisClient, cfg.ConceptCacheTTL, logger)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		publisher = events.NewNATSPublisher(conn, cfg.NATSSubject)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	deps := service.PlayDependencies{
		Store:     store,
		Provider:  provider,
		Lookup:    lookup,
		Publisher: publisher,
		Validator: validate,
		Completion: service.CompletionOptions{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		},
		Logger: logger,
	}

	findMistakeService := service.NewFindMistakeService(deps)
	missingLinkService := service.NewMissingLinkService(deps)
	teachDialogueService := service.NewTeachDialogueService(deps)

	// Retries may stack several collaborator calls behind one request.
	requestTimeout := cfg.LLM.Timeout * time.Duration(max(cfg.LLM.MaxAttempts, 1))

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})

	router.Register(app, cfg, router.Dependencies{
		FindMistakeHandler:   handler.NewFindMistakeHandler(findMistakeService, requestTimeout, logger),
		MissingLinkHandler:   handler.NewMissingLinkHandler(missingLinkService, requestTimeout, logger),
		TeachDialogueHandler: handler.NewTeachDialogueHandler(teachDialogueService, requestTimeout, logger),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("llm_provider", cfg.LLM.Provider).Str("session_backend", cfg.SessionBackend).Msg("starting play api")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Error().Err(err).Msg("server stopped with error")
			cancel()
		}
	}()

	waitForShutdown(ctx, app)
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(timeoutCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
