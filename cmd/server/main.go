package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	authapi "github.com/pagemark/readsync/api/echo"
	"github.com/pagemark/readsync/cache"
	rediscache "github.com/pagemark/readsync/cache/redis"
	"github.com/pagemark/readsync/config"
	"github.com/pagemark/readsync/internal/metrics"
	"github.com/pagemark/readsync/internal/provider"
	"github.com/pagemark/readsync/mongodb"
	"github.com/pagemark/readsync/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, disconnect, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := disconnect(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("MongoDB disconnect failed")
		}
	}()

	// Repositories
	sessionRepo, err := mongodb.NewAuthSessionRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session repository")
	}
	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize user repository")
	}
	deviceRepo, err := mongodb.NewDeviceRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize device repository")
	}
	tokenRepo, err := mongodb.NewTokenRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token repository")
	}

	// Token validation cache: Redis when configured, in-process otherwise.
	var tokenStore cache.TokenStore
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		tokenStore = rediscache.NewTokenStore(redisClient, "readsync")
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis token cache")
	} else {
		memStore := cache.NewMemoryTokenStore()
		defer memStore.Close()
		tokenStore = memStore
	}

	// Metrics
	registry := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics.Init(registry)
	}

	// Services
	githubClient := provider.NewGitHubClient(provider.Options{
		ClientID:     cfg.GithubClientID,
		ClientSecret: cfg.GithubClientSecret,
		RedirectURI:  cfg.GithubRedirectURI,
		Scopes:       strings.Fields(cfg.GithubScopes),
	})

	sessionService := services.NewSessionService(sessionRepo, cfg.SessionTTL())
	tokenService := services.NewTokenService(tokenRepo, tokenStore, cfg.UserTokenPrefix, cfg.UserTokenTTL())
	userService := services.NewUserService(userRepo)
	deviceService := services.NewDeviceService(deviceRepo)
	authService := services.NewAuthService(sessionService, tokenService, userService, deviceService, githubClient)

	// Janitor: periodic sweep standing in for an external scheduler.
	janitor := services.NewJanitor(sessionService, tokenService)
	go janitor.Run(ctx, cfg.JanitorInterval())

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	authapi.NewAuthAPI(authService).RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
