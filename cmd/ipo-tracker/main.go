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

	"github.com/BhavinDalsaniya/IPOApplication/internal/cache"
	"github.com/BhavinDalsaniya/IPOApplication/internal/config"
	"github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/platform/sqlite"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote/groww"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote/nse"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote/yahoo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/reconcile"
	iporepo "github.com/BhavinDalsaniya/IPOApplication/internal/repository/ipo"
	pricelogrepo "github.com/BhavinDalsaniya/IPOApplication/internal/repository/pricelog"
	"github.com/BhavinDalsaniya/IPOApplication/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Root context: cancelled on SIGINT/SIGTERM so in-flight quote lookups
	// stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	viewCache, err := cache.New(1<<20, cfg.CacheTTL)
	if err != nil {
		slog.Error("failed to create cache", "error", err)
		os.Exit(1)
	}

	// Repositories
	ipoRepo := iporepo.NewRepository(db.DB)
	logRepo := pricelogrepo.NewRepository(db.DB)

	// Quote sources in priority order: chart data, official exchange,
	// broker fallback.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	resolver := quote.NewResolver(
		yahoo.New(yahoo.WithClient(httpClient)),
		nse.New(nse.WithClient(httpClient)),
		groww.New(groww.WithClient(httpClient)),
	)

	// Services
	ipoSvc := ipo.NewService(ipoRepo, viewCache)
	reconciler := reconcile.NewService(ipoRepo, logRepo, resolver, viewCache,
		reconcile.WithGroupSize(cfg.PriceGroupSize),
		reconcile.WithGroupDelay(cfg.PriceGroupDelay),
	)

	// Optional in-process scheduler; most deployments use external cron
	// against POST /api/v1/prices/refresh instead.
	runnerDone := make(chan struct{})
	if cfg.RefreshInterval > 0 {
		runner := reconcile.NewRunner(reconciler, cfg.RefreshInterval)
		go func() {
			runner.Run(rootCtx)
			close(runnerDone)
		}()
		slog.Info("price refresh scheduler enabled", "interval", cfg.RefreshInterval.String())
	} else {
		close(runnerDone)
	}

	srv := server.New(rootCtx, cfg.Port, server.Deps{
		IpoSvc:     ipoSvc,
		Logs:       logRepo,
		Resolver:   resolver,
		Reconciler: reconciler,
		CronSecret: cfg.CronSecret,
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	<-done

	// Cancel root context first so in-flight requests and any scheduled
	// pass begin winding down immediately.
	rootCancel()
	<-runnerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
