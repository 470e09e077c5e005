package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopwarden/internal/admin"
	"shopwarden/internal/app"
	"shopwarden/internal/engine"
	"shopwarden/internal/event"
	"shopwarden/internal/infra/gateway"
	"shopwarden/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync (Simulating Loading Screen logic)
	go bootstrap.SyncAssets(ctx)

	// 5. Event plumbing: pooled events, recorder, admin feed
	event.Warmup()

	hub := admin.NewHub()
	go hub.Run()

	recorder := engine.NewRecorder(cfg.Warden.InboxSize, bootstrap.Storage, hub)
	if err := recorder.Start(ctx); err != nil {
		slog.Error("❌ Failed to start recorder", slog.Any("error", err))
		os.Exit(1)
	}
	defer recorder.Stop()

	// 6. Shop registry: live gateway or embedded fixture
	registry := service.NewRegistry()

	if cfg.Gateway.URL != "" {
		worker, err := gateway.NewWorker(cfg.Gateway.URL, cfg.Gateway.Token, registry, bootstrap.Storage)
		if err != nil {
			slog.Error("❌ Invalid gateway configuration", slog.Any("error", err))
			os.Exit(1)
		}
		if err := worker.Connect(ctx); err != nil {
			slog.Error("Failed to connect gateway", slog.Any("error", err))
		}
		defer worker.Disconnect()
		slog.InfoContext(ctx, "✅ World gateway started", slog.String("url", cfg.Gateway.URL))
	} else {
		if err := bootstrap.LoadShopFixture(cfg.Warden.ShopsFixture, registry); err != nil {
			slog.Error("❌ Failed to load shop fixture", slog.Any("error", err))
			os.Exit(1)
		}
		slog.InfoContext(ctx, "✅ Embedded mode", slog.Int("shops", registry.Len()))
	}

	// 7. Sweeper (The Correction Loop)
	corrector := service.NewCorrector(recorder.Inbox())
	sweeper := engine.NewSweeper(registry, bootstrap.Limits, corrector, recorder.Inbox())
	if err := sweeper.Start(ctx); err != nil {
		slog.Error("❌ Failed to start sweeper", slog.Any("error", err))
		os.Exit(1)
	}
	defer sweeper.Stop()
	slog.InfoContext(ctx, "✅ Sweeper started", slog.Duration("tick_interval", bootstrap.Limits.TickInterval()))

	// 8. Admin HTTP surface
	adminSrv := admin.NewServer(bootstrap.Limits, sweeper, bootstrap.Storage, hub)
	httpSrv := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: adminSrv.Router(),
	}
	go func() {
		slog.Info("✅ Admin API listening", slog.String("addr", cfg.Admin.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Admin server failed", slog.Any("error", err))
		}
	}()

	slog.InfoContext(ctx, "✨ ShopWarden fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Admin server shutdown failed", slog.Any("error", err))
	}
}
