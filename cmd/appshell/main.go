package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/divyanshu-patil/appshell/internal/bridge"
	"github.com/divyanshu-patil/appshell/internal/config"
	"github.com/divyanshu-patil/appshell/internal/crypto"
	"github.com/divyanshu-patil/appshell/internal/deeplink"
	"github.com/divyanshu-patil/appshell/internal/domain"
	"github.com/divyanshu-patil/appshell/internal/logging"
	"github.com/divyanshu-patil/appshell/internal/notification"
	"github.com/divyanshu-patil/appshell/internal/settings"
	"github.com/divyanshu-patil/appshell/internal/shell"
	"github.com/divyanshu-patil/appshell/internal/startup"
	"github.com/divyanshu-patil/appshell/internal/store"
	"github.com/divyanshu-patil/appshell/internal/theme"
	"github.com/divyanshu-patil/appshell/internal/version"
)

// mountTimeout bounds how long the shell waits for the host hello before the
// launch degrades to the default path.
const mountTimeout = 30 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupSettings(cfg *config.Config) *settings.Repository {
	var cipherSvc crypto.Service = crypto.NoopService{}
	if cfg.SettingsEncryptionKey != "" {
		var err error
		cipherSvc, err = crypto.NewAesGcmCryptoService(cfg.SettingsEncryptionKey)
		if err != nil {
			slog.Error("Failed to create crypto service", "error", err)
			os.Exit(1)
		}
	}

	repo, err := settings.Open(cfg.SettingsPath, cipherSvc)
	if err != nil {
		slog.Error("Failed to open settings store", "error", err)
		os.Exit(1)
	}
	return repo
}

func runGracefulShutdown(srv *bridge.Server, orchestrator *shell.Orchestrator, st *store.Store) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		orchestrator.Unmount()
		st.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	settingsRepo := setupSettings(cfg)
	defer func() { _ = settingsRepo.Close() }()

	st := store.New(clock)

	hostBridge := bridge.NewHostBridge()
	parser := deeplink.NewParser(cfg.DeepLinkScheme, cfg.DeepLinkHost)
	router := notification.NewRouter(st)
	videoConf := notification.NewVideoConfChecker(st)
	arbitrator := startup.NewArbitrator(hostBridge, parser, router, videoConf, st, clock, cfg.DeepLinkListenerDelay)

	orchestrator := shell.NewOrchestrator(shell.Deps{
		Host:                 hostBridge,
		Appearance:           hostBridge,
		Settings:             settingsRepo,
		Crash:                domain.NoopCrashReporter{},
		Themes:               theme.NewManager(hostBridge, hostBridge),
		Arbitrator:           arbitrator,
		Store:                st,
		Clock:                clock,
		DebounceWindow:       cfg.DimensionDebounceWindow,
		EnableCrashReporting: cfg.CrashReportingEnabled,
	})

	srv := bridge.NewServer(cfg, hostBridge, st, orchestrator)

	done := runGracefulShutdown(srv, orchestrator, st)

	// Mount blocks on the host hello, which only arrives once the server
	// accepts the host connection, so it runs alongside Start.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mountTimeout)
		defer cancel()
		orchestrator.Mount(ctx)
	}()

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
