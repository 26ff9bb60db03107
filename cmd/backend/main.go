// Package main provides the entry point for the Shortlink URL shortener service.
//
//	@title			Shortlink API
//	@version		1.0
//	@description	URL shortener with click analytics.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"Shortlink-Backend/internal/analytics"
	"Shortlink-Backend/internal/auth"
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/database"
	httpHandler "Shortlink-Backend/internal/handler/http"
	"Shortlink-Backend/internal/repository/cache"
	"Shortlink-Backend/internal/repository/postgres"
	"Shortlink-Backend/internal/service"
	"Shortlink-Backend/pkg/geoip"
	"Shortlink-Backend/pkg/logger"
	"Shortlink-Backend/pkg/useragent"
	"context"
	"errors"
	lg "log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, logger.WithFile(logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}))
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting shortlink service", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	storage := postgres.New(db, log)

	var opts []service.Option
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, short code cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			opts = append(opts, service.WithCache(cache.NewURLCache(storage, client, cfg.Redis.TTL, log)))
			log.Info("short code cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
		}
	}
	urls := service.NewURLShortener(storage, &cfg.URLShortener, log, opts...)

	devices, err := useragent.NewParser(cfg.Analytics.UARegexesPath, log)
	if err != nil {
		log.Fatal("failed to initialize User-Agent parser", zap.Error(err))
	}

	locator, err := geoip.Open(cfg.Analytics.GeoIPDBPath, log)
	if err != nil {
		log.Warn("geoip lookups disabled", zap.Error(err))
	}
	defer locator.Close()

	processor := analytics.NewProcessor(storage, devices, locator, log, analytics.ProcessorConfig{
		WorkerCount:     cfg.Analytics.WorkerCount,
		BufferSize:      cfg.Analytics.BufferSize,
		RetryAttempts:   cfg.Analytics.RetryAttempts,
		RetryDelay:      cfg.Analytics.RetryDelay,
		ShutdownTimeout: cfg.Analytics.ShutdownTimeout,
	})
	if err := processor.Start(); err != nil {
		log.Fatal("failed to start analytics processor", zap.Error(err))
	}

	if cfg.Retention.SweepInterval > 0 {
		sweeper := analytics.NewSweeper(storage, log)
		go sweeper.Run(ctx, cfg.Retention.SweepInterval, cfg.Retention.DaysToKeep)
	}

	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte(cfg.Auth.JWTSecret),
		AccessTokenDuration: cfg.Auth.AccessTokenTTL,
		Issuer:              cfg.Auth.Issuer,
	})

	server := httpHandler.NewServer(httpHandler.ServerDeps{
		Storage:   storage,
		URLs:      urls,
		Summaries: analytics.NewAggregator(storage, cfg.Analytics.TopReferrers, log),
		Clicks:    processor,
		JWT:       jwtService,
		Passwords: auth.NewPasswordService(cfg.Auth.BcryptCost),
		Config:    cfg,
		Log:       log,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      server.Router(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down shortlink service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Очередь дренируется после остановки сервера, новые клики уже не приходят
	if err := processor.Stop(); err != nil {
		log.Error("failed to stop analytics processor", zap.Error(err))
	}
}
