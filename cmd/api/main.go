package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itn-gateway/config"
	httpHandler "itn-gateway/internal/adapter/http/handler"
	"itn-gateway/internal/adapter/http/middleware"
	"itn-gateway/internal/adapter/storage/memory"
	pgStorage "itn-gateway/internal/adapter/storage/postgres"
	redisStorage "itn-gateway/internal/adapter/storage/redis"
	"itn-gateway/internal/core/ports"
	"itn-gateway/internal/service"
	"itn-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("ITN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Bool("sandbox", cfg.Gateway.Sandbox).
		Msg("Starting ITN gateway")

	ctx := context.Background()

	var (
		appRepo        ports.ApplicationRepository
		auditRepo      ports.AuditRepository
		healthCheckers []ports.HealthChecker
	)

	// Initialize storage
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		appRepo = pgStorage.NewApplicationRepo(pool, cfg.Database.Table)
		auditRepo = pgStorage.NewAuditRepo(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool, cfg.Database.Table))
	case config.DriverMemory:
		appRepo = memory.NewApplicationStore()
		log.Warn().Msg("Using in-memory application store; records are lost on restart")
	}

	// Initialize Redis (rate limiting only)
	var rateLimitStore middleware.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, rate limiting disabled")
		} else {
			defer rdb.Close()
			log.Info().Msg("Redis connected")
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
			healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		}
	}

	// Initialize core services
	var encSvc ports.EncryptionService
	if cfg.AES.Key != "" {
		aes, err := service.NewAESEncryptionService(cfg.AES.Key)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize encryption service")
		}
		encSvc = aes
	} else {
		log.Warn().Msg("aes.key not set, payment tokens are stored as received")
	}

	checks, err := service.ChecksFromConfig(cfg.Gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid gateway checks")
	}

	sigSvc := service.NewMD5SignatureService()
	hashSvc := service.NewArgon2HashService()
	attestor := service.NewGatewayAttestor(
		cfg.Gateway.ValidateURL(),
		service.NewAttestationClient(cfg.Gateway.AttestTimeout),
		logger.Component(log, "attestor"),
	)
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))

	// Initialize business services
	reconcileSvc := service.NewReconciliationService(appRepo, encSvc, logger.Component(log, "reconcile"))
	itnSvc := service.NewITNService(
		service.ITNConfig{Passphrase: cfg.Gateway.Passphrase, Checks: checks},
		sigSvc,
		attestor,
		reconcileSvc,
		logger.Component(log, "itn"),
	)
	returnSvc := service.NewReturnService(appRepo, auditSvc, logger.Component(log, "return"))

	var adminSvc ports.AdminService
	if cfg.Admin.Enabled() {
		adminSvc = service.NewAdminService(appRepo, hashSvc, auditSvc, cfg.Admin.SecretHash, logger.Component(log, "admin"))
	}

	log.Info().
		Str("validate_url", cfg.Gateway.ValidateURL()).
		Bool("passphrase_set", cfg.Gateway.Passphrase != "").
		Int("checks", len(checks)).
		Bool("admin_enabled", adminSvc != nil).
		Msg("Notification pipeline ready")

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ITNSvc:         itnSvc,
		ReturnSvc:      returnSvc,
		AdminSvc:       adminSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		RedirectURL:    cfg.PaymentReturn.RedirectURL,
		MaxBodySize:    cfg.Server.MaxBodySize,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
