package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bambuco/boa/internal/catalogue"
	"github.com/bambuco/boa/internal/config"
	"github.com/bambuco/boa/internal/httpserver"
	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/redis"
	"github.com/bambuco/boa/internal/scheduler"
	"github.com/bambuco/boa/internal/search"
	"github.com/bambuco/boa/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	catalogue   *catalogue.Catalogue
	reloader    *scheduler.RepositoriesReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// In-memory catalogue of configured object banks
	cat := catalogue.New()

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	// Initialize repositories reloader
	reloader := scheduler.NewRepositoriesReloader(
		cfg.RepositoriesFile,
		cat,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		RedisClient:      redisClient,
		Catalogue:        cat,
		SearchCache:      search.NewCache(cfg.CacheLife, nil),
		SuggestionsSize:  cfg.SuggestionsSize,
		ResultsSize:      cfg.ResultsSize,
		MinLetters:       cfg.MinLetters,
		BankHTTP:         &http.Client{Timeout: cfg.BankTimeout},
		ProxyHTTP:        &http.Client{Timeout: cfg.ProxyTimeout},
		ProxyPrefix:      cfg.ProxyPrefix,
		RepositoriesFile: cfg.RepositoriesFile,
		ReloadTrigger:    reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		catalogue:   cat,
		reloader:    reloader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Boa v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Boa %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start repositories reloader (loads banks and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start repositories reloader: %w", err)
	}
	a.logger.Info("repositories reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop reloader
	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Boa stopped cleanly")
	return nil
}
