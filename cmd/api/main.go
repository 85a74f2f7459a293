// Package main is the entrypoint for the EnhanceMySEO API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/cache"
	"github.com/enhancemyseo/enhancemyseo/internal/config"
	"github.com/enhancemyseo/enhancemyseo/internal/discovery"
	"github.com/enhancemyseo/enhancemyseo/internal/handler"
	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/llm"
	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
	"github.com/enhancemyseo/enhancemyseo/internal/server"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Secrets
	secretsKey, err := cfg.GetSecretsKey()
	if err != nil {
		logger.Error("invalid secrets key", "error", err)
		os.Exit(1)
	}
	sealer, err := auth.NewSealer(secretsKey)
	if err != nil {
		logger.Error("failed to initialize sealer", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// LLM providers
	completer := llm.NewClient(llm.NewAnthropic(llm.AnthropicConfig{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.AnthropicMaxTokens,
		Timeout:   cfg.LLMTimeout,
	}))
	if !completer.Available() {
		logger.Warn("no LLM provider configured; generation endpoints will fail")
	}
	researcher := llm.NewPerplexity(llm.PerplexityConfig{
		APIKey:  cfg.PerplexityAPIKey,
		Model:   cfg.PerplexityModel,
		Enabled: cfg.UsePerplexity,
		Timeout: cfg.LLMTimeout,
	}, logger)

	// Site discovery
	crawler := discovery.New(discovery.Config{
		Budget:        cfg.DiscoveryBudget,
		RobotsTimeout: cfg.DiscoverySitemapTimeout,
		PageTimeout:   cfg.DiscoveryPageTimeout,
		Concurrency:   cfg.DiscoveryConcurrency,
		MaxFetch:      cfg.DiscoveryMaxFetch,
		HostRPS:       cfg.DiscoveryHostRPS,
		UserAgent:     cfg.DiscoveryUserAgent,
		AllowPrivate:  cfg.DiscoveryAllowPrivate,
	}, logger)
	if cfg.DiscoveryAllowPrivate {
		logger.Warn("discovery may crawl private networks")
	}

	// History pipeline
	metricsRecorder := metrics.NewInMemory()
	historyRepo := repository.NewHistoryRepository(repo)
	publisher := history.NewPublisher(cacheClient.Client(), logger, metricsRecorder)

	// Initialize services
	usageService := service.NewUsageService(repo, logger)
	authService := service.NewAuthService(repo, tokens, cacheClient, usageService, cfg.GetAdminEmails(), logger)
	brandService := service.NewBrandService(repo, sealer, logger)
	discoveryService := service.NewDiscoveryService(crawler, cacheClient, cfg.DiscoveryCacheTTL, cfg.DiscoveryAllowPrivate, publisher, metricsRecorder, logger)
	keywordService := service.NewKeywordService(completer, repo, usageService, publisher, metricsRecorder, logger)
	articleService := service.NewArticleService(repo, completer, repo, researcher, discoveryService, usageService, publisher, metricsRecorder, logger)
	productService := service.NewProductService(repo, completer, repo, usageService, publisher, metricsRecorder, logger)
	historyService := service.NewHistoryService(historyRepo)

	// Initialize handlers
	handlers := server.Handlers{
		Root:      handler.New(),
		Health:    handler.NewHealthHandler(repo, cacheClient),
		Auth:      handler.NewAuthHandler(authService, logger),
		Brand:     handler.NewBrandHandler(brandService, logger),
		Keyword:   handler.NewKeywordHandler(keywordService, logger),
		Article:   handler.NewArticleHandler(articleService, logger),
		Product:   handler.NewProductHandler(productService, logger),
		Discovery: handler.NewDiscoveryHandler(discoveryService, logger),
		Activity:  handler.NewActivityHandler(historyService, usageService, logger),
		Admin:     handler.NewAdminHandler(authService, usageService, completer, logger),
		Metrics:   handler.NewMetricsHandler(metricsRecorder),
	}

	// Setup router
	router := server.NewRouter(server.RouterConfig{
		Logger:        logger,
		Tokens:        tokens,
		Denylist:      cacheClient,
		Limiter:       cacheClient,
		RateLimitUser: cfg.RateLimitAPIEnabled,
		RateLimitAuth: cfg.RateLimitAuthEnabled,
		AuthRPS:       cfg.RateLimitAuthRPS,
		AuthBurst:     cfg.RateLimitAuthBurst,
		CORSOrigins:   cfg.GetCORSAllowedOrigins(),
		MaxBodySize:   cfg.MaxRequestBodySize,
		IsDevelopment: cfg.IsDevelopment(),
	}, handlers)

	// Create server
	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Components stop in reverse order: worker first, then Redis, then Postgres.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("cache", func(context.Context) error {
		return cacheClient.Close()
	})

	if cfg.HistoryWorkerEnabled {
		worker := history.NewWorker(cacheClient.Client(), historyRepo, logger, history.NewConsumerID(), metricsRecorder)
		worker.SetBatchSize(cfg.HistoryBatchSize)
		worker.SetClaimIdle(cfg.HistoryClaimIdle)
		workerCtx, cancelWorker := context.WithCancel(ctx)
		go func() {
			if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("history worker stopped", "error", err)
			}
		}()
		srv.OnShutdown("history-worker", func(ctx context.Context) error {
			defer cancelWorker()
			return worker.Shutdown(ctx)
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"llm_providers", len(completer.ListProviders()),
		"research_enabled", researcher.Enabled(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
