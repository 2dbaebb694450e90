package main

//	@title			Folio API
//	@version		0.1.0
//	@description	Portfolio website backend with a conversational analytics assistant.
//	@BasePath		/api

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/foliolabs/folio/api/swagger"
	"github.com/foliolabs/folio/internal/analytics"
	"github.com/foliolabs/folio/internal/chat"
	"github.com/foliolabs/folio/internal/config"
	"github.com/foliolabs/folio/internal/convlog"
	"github.com/foliolabs/folio/internal/dashboard"
	"github.com/foliolabs/folio/internal/event"
	"github.com/foliolabs/folio/internal/server"
	"github.com/foliolabs/folio/internal/store"
	"github.com/foliolabs/folio/internal/summary"
	"github.com/foliolabs/folio/internal/version"
	"github.com/foliolabs/folio/internal/ws"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger from configuration.
	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Folio server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database and run migrations.
	dbPath := viperCfg.GetString("database.path")
	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Version); err != nil {
		logger.Fatal("schema version check failed", zap.Error(err))
	}
	if err := db.Migrate(ctx, "convlog", convlog.Migrations()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)

	// Shared services.
	bus := event.NewBus(logger.Named("event"))
	logger.Info("event bus created", zap.String("component", "event"))

	loader := analytics.NewLoader(viperCfg.GetString("dataset.path"))
	logger.Info("analytics dataset configured",
		zap.String("component", "analytics"),
		zap.String("path", loader.Path()),
	)

	// Summarization client.
	sumCfg := summary.DefaultConfig()
	if u := viperCfg.GetString("summary.url"); u != "" {
		sumCfg.URL = u
	}
	if m := viperCfg.GetString("summary.model"); m != "" {
		sumCfg.Model = m
	}
	if n := viperCfg.GetInt("summary.max_tokens"); n > 0 {
		sumCfg.MaxTokens = n
	}
	if d := viperCfg.GetDuration("summary.timeout"); d > 0 {
		sumCfg.Timeout = d
	}
	summarizer, err := summary.New(sumCfg, logger.Named("summary"))
	if err != nil {
		logger.Fatal("failed to create summarization client", zap.Error(err))
	}
	logger.Info("summarization client initialized",
		zap.String("component", "summary"),
		zap.String("url", sumCfg.URL),
		zap.String("model", sumCfg.Model),
	)

	// Chat pipeline.
	cache := chat.NewCache(viperCfg.GetDuration("chat.cache_ttl"))
	convStore := convlog.NewStore(db.DB())
	orchestrator := chat.NewOrchestrator(
		loader,
		summarizer,
		cache,
		convStore,
		bus,
		logger.Named("chat"),
		viperCfg.GetInt("chat.forecast_periods"),
	)
	chatHandler := chat.NewHandler(orchestrator, convStore, logger.Named("chat"))
	logger.Info("chat pipeline initialized", zap.String("component", "chat"))

	// WebSocket activity feed.
	wsHandler := ws.NewHandler(bus, logger.Named("ws"))
	logger.Info("websocket handler initialized", zap.String("component", "ws"))

	// HTTP server.
	addr := fmt.Sprintf("%s:%s", viperCfg.GetString("server.host"), viperCfg.GetString("server.port"))
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	devMode := viperCfg.GetBool("server.dev_mode")
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		return db.DB().PingContext(ctx)
	})
	dashboardHandler := dashboard.Handler(viperCfg.GetString("dashboard.dir"))

	srv := server.New(addr, logger, readyCheck, dashboardHandler, devMode, chatHandler, wsHandler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Folio server ready", zap.String("addr", addr))

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("Folio server stopped")
}
