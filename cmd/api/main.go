package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sproutfin/sprout/internal/biometric"
	"github.com/sproutfin/sprout/internal/config"
	"github.com/sproutfin/sprout/internal/flow"
	"github.com/sproutfin/sprout/internal/gateway"
	"github.com/sproutfin/sprout/internal/i18n"
	"github.com/sproutfin/sprout/internal/infra"
	"github.com/sproutfin/sprout/internal/logging"
	"github.com/sproutfin/sprout/internal/notification"
	"github.com/sproutfin/sprout/internal/prefs"
	"github.com/sproutfin/sprout/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	var store prefs.Store
	if cache != nil {
		store = prefs.NewRedisStore(cache)
	} else {
		store = prefs.NewFileStore(cfg.PrefsPath)
		logger.Info("redis not configured, using file-backed preferences", "path", cfg.PrefsPath)
	}

	resolver, err := i18n.NewResolver(store, logging.Named(logger, "i18n"))
	if err != nil {
		logger.Error("load language catalogs", "error", err)
		os.Exit(1)
	}
	// Blocks the first frame until the display language is settled.
	lang := resolver.Resolve(ctx, cfg.DeviceLocale)
	logger.Info("display language resolved", "language", lang)
	unsubscribe := resolver.Subscribe(func(lang i18n.Language) {
		logger.Info("display language changed", "language", lang)
	})
	defer unsubscribe()

	client := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAnonKey, cfg.GatewayTimeout, logging.Named(logger, "gateway"))
	enroller := biometric.NewManager(
		&biometric.StaticProvider{Supported: true, Kind: "fingerprint"},
		store,
		logging.Named(logger, "biometric"),
	)

	var repo flow.Repository
	if cache != nil {
		repo = flow.NewRedisRepository(cache, 0)
	} else {
		repo = flow.NewMemoryRepository()
	}

	rules := flow.Rules{ResendSeconds: int(cfg.ResendWindow.Seconds())}
	ports := flow.Ports{
		Gateway:    client,
		Biometrics: enroller,
		Notifier:   notification.NewLoggerNotifier(logging.Named(logger, "notify")),
	}
	sessions := flow.NewRegistry(rules, ports, repo, logging.Named(logger, "flow"))
	defer sessions.Shutdown()

	srv, err := server.New(cfg, cache, resolver, sessions, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
