package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bidmonitor/internal/client/superbid"
	"bidmonitor/internal/config"
	cronrunner "bidmonitor/internal/cron"
	"bidmonitor/internal/db"
	"bidmonitor/internal/handler"
	"bidmonitor/internal/logger"
	"bidmonitor/internal/metrics"
	"bidmonitor/internal/repository"
	gormrepository "bidmonitor/internal/repository/gorm"
	"bidmonitor/internal/service"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "bid monitor panic: %v\n", r)
			code = 1
		}
	}()

	cfgPath := os.Getenv("BIDMON_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.Store, cfg.DB)
	if err != nil {
		log.Error("store connection failed", zap.Error(err))
		return 1
	}
	defer db.Close(dbConn)

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(ctx, dbConn, cfg.Store.Schema, cfg.Store.HistoryTable, cfg.Store.RunTable); err != nil {
			log.Error("auto-migrate failed", zap.Error(err))
			return 1
		}
	}

	router, err := repository.NewTableRouter(cfg.Store.CategoryTables)
	if err != nil {
		log.Error("category routing invalid", zap.Error(err))
		return 1
	}

	store := gormrepository.New(dbConn.Gorm, gormrepository.Tables{
		Schema:        cfg.Store.Schema,
		ReferenceView: cfg.Store.ReferenceView,
		HistoryTable:  cfg.Store.HistoryTable,
		RunTable:      cfg.Store.RunTable,
	})
	client := superbid.NewClient(&http.Client{Timeout: cfg.Superbid.Timeout}, superbid.Options{
		BaseURL:       cfg.Superbid.BaseURL,
		SiteURL:       cfg.Superbid.SiteURL,
		Timeout:       cfg.Superbid.Timeout,
		Locale:        cfg.Superbid.Locale,
		OrderBy:       cfg.Superbid.OrderBy,
		PortalID:      cfg.Superbid.PortalID,
		RequestOrigin: cfg.Superbid.RequestOrigin,
		SearchType:    cfg.Superbid.SearchType,
		TimeZoneID:    cfg.Superbid.TimeZoneID,
		UserAgent:     cfg.Superbid.UserAgent,
		Logger:        log,
	})

	var runs repository.RunRepository
	if cfg.RunLog.Enabled {
		runs = store
	}
	mtr := metrics.New()
	tracker := &service.RunTracker{}
	monitor := &service.BidMonitor{
		Loader: &service.ReferenceLoader{
			Store:    store,
			Source:   cfg.Monitor.Source,
			PageSize: cfg.Monitor.ReferencePageSize,
			Logger:   log,
		},
		Fetcher: &service.OfferFetcher{
			Client:   client,
			PageSize: cfg.Superbid.PageSize,
			Logger:   log,
		},
		Matcher:    &service.Matcher{SiteURL: client.SiteURL()},
		Updater:    &service.BaseUpdater{Store: store, Router: router, Logger: log},
		Appender:   &service.HistoryAppender{Store: store, Logger: log},
		Runs:       runs,
		Tracker:    tracker,
		Categories: cfg.Categories(),
		Source:     cfg.Monitor.Source,
		Metrics:    mtr,
		Logger:     log,
	}

	if !cfg.Cron.Enabled {
		if _, err := monitor.Run(ctx); err != nil {
			return 1
		}
		return 0
	}

	return serve(ctx, cfg, log, dbConn, monitor, tracker, mtr)
}

// serve runs the monitor on its schedule and exposes health and metrics
// until the process is signalled.
func serve(ctx context.Context, cfg config.Config, log *zap.Logger, dbConn *db.DB, monitor *service.BidMonitor, tracker *service.RunTracker, mtr *metrics.Metrics) int {
	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Runs: tracker}
	healthHandler.Register(engine)
	monitorHandler := &handler.MonitorHandler{Runs: tracker, Metrics: mtr}
	monitorHandler.Register(engine)
	handler.RegisterDocs(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	cronRunner := cronrunner.New(log, ctx)
	if _, err := cronRunner.Add(cfg.Cron.Schedule, func(ctx context.Context) {
		if _, err := monitor.Run(ctx); err != nil {
			log.Warn("scheduled run failed", zap.Error(err))
		}
	}); err != nil {
		log.Error("invalid cron schedule", zap.String("schedule", cfg.Cron.Schedule), zap.Error(err))
		return 1
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	code := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	return code
}
