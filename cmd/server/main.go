package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/gov-comb/app/api"
	"github.com/lysyi3m/gov-comb/app/cfg"
	"github.com/lysyi3m/gov-comb/app/digest"
	"github.com/lysyi3m/gov-comb/app/fetch"
	"github.com/lysyi3m/gov-comb/app/kst"
	"github.com/lysyi3m/gov-comb/app/logger"
	"github.com/lysyi3m/gov-comb/app/source"
	"github.com/lysyi3m/gov-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	slog.SetDefault(logger.New(appCfg.Debug))

	slog.Info("Starting gov-comb server", "version", appCfg.Version)

	registry, err := source.Load(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load source registry", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Source registry loaded",
		"sources", len(registry.Sources),
		"enabled", len(registry.EnabledSources()),
		"official_domains", len(registry.OfficialDomains))

	builder := digest.NewBuilder(
		registry,
		fetch.NewClient(appCfg.UserAgent, appCfg.FetchTimeout),
		kst.NewResolver(time.Now),
		digest.Options{
			Timeout:       appCfg.FetchTimeout,
			WorkerCount:   appCfg.WorkerCount,
			SummaryLength: appCfg.SummaryLength,
			PreferPortal:  appCfg.PreferPortal,
		},
	)

	if appCfg.DigestCron != "" {
		scheduler, err := tasks.NewScheduler(appCfg.DigestCron, builder, appCfg.DigestDir)
		if err != nil {
			slog.Error("Failed to create digest scheduler", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Info("Digest snapshots disabled (DIGEST_CRON not set)")
	}

	server := api.NewServer(api.NewHandler(builder, appCfg.Version), appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		// a digest waits for the slowest source
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
