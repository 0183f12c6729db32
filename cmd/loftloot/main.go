// Command loftloot serves the LoftLoot catalog API and its maintenance
// subcommands.
//
//	@title						LoftLoot API
//	@version					1.0
//	@description				Catalog relevance engine: search, live suggestions, filter availability and related products.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/loftloot/loftloot/internal/apidocs"
	"github.com/loftloot/loftloot/internal/auth"
	"github.com/loftloot/loftloot/internal/catalog"
	"github.com/loftloot/loftloot/internal/config"
	"github.com/loftloot/loftloot/internal/metrics"
	"github.com/loftloot/loftloot/internal/notify"
	"github.com/loftloot/loftloot/internal/server"
	"github.com/loftloot/loftloot/internal/version"
)

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		runServe(args)
	case "import":
		runImport(args)
	case "export":
		runExport(args)
	case "mcp":
		runMCP(args)
	case "backup":
		runBackup(args)
	case "restore":
		runRestore(args)
	case "token":
		runToken(args)
	case "version":
		fmt.Println(version.Info())
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\nusage: loftloot [serve|import|export|mcp|backup|restore|token|version] [flags]\n", cmd)
		os.Exit(2)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	settings, err := config.Decode(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(settings.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("LoftLoot server starting", zap.String("version", version.Short()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := newSource(ctx, settings, logger)
	if err != nil {
		logger.Fatal("failed to open feed source", zap.Error(err))
	}
	defer closeSource()

	m := metrics.New()
	publisher := newPublisher(settings.MQTT, logger)
	defer func() { _ = publisher.Close() }()

	engine := catalog.NewEngine(source, logger.Named("catalog"),
		catalog.WithMetrics(m),
		catalog.WithPublisher(publisher),
		catalog.WithOptions(settings.Engine),
	)
	// The server starts either way; catalog routes answer 503 until a load succeeds.
	if _, err := engine.Reload(ctx); err != nil {
		logger.Error("initial catalog load failed", zap.Error(err))
	}
	if settings.Feed.RefreshInterval > 0 {
		go engine.Run(ctx, settings.Feed.RefreshInterval)
	}

	opts := server.Options{
		Metrics:        m.Handler(),
		APIDocs:        settings.Server.APIDocs,
		MaxConnections: settings.Server.MaxConnections,
		Middleware:     []func(http.Handler) http.Handler{m.InstrumentHandler},
	}
	if rl := settings.Server.RateLimit; rl.RPS > 0 {
		limiter := server.NewRateLimiter(rl.RPS, rl.Burst, logger.Named("ratelimit"))
		opts.Middleware = append(opts.Middleware, limiter.Middleware)
	}
	handler := catalog.NewHandler(engine, logger.Named("api"), settings.Server.AllowedOrigins...)
	if settings.Server.AdminSecret != "" {
		authority, err := auth.New(settings.Server.AdminSecret, logger.Named("auth"))
		if err != nil {
			logger.Fatal("failed to create token authority", zap.Error(err))
		}
		handler.WithAdmin(authority.RequireAdmin)
	} else {
		logger.Warn("server.admin_secret is empty; POST /api/v1/catalog/reload is unauthenticated")
	}
	srv := server.New(settings.Server.Addr(), logger, opts, handler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("LoftLoot server ready", zap.String("addr", settings.Server.Addr()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	grace := settings.Server.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), grace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("LoftLoot server stopped")
}

func newLogger(cfg config.LogSettings) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

// newPublisher connects to MQTT when a broker is configured. A broker that
// cannot be reached is logged and notifications are disabled.
func newPublisher(cfg notify.MQTTConfig, logger *zap.Logger) notify.Publisher {
	if cfg.Broker == "" {
		return notify.Nop{}
	}
	p, err := notify.NewMQTT(cfg, logger.Named("notify"))
	if err != nil {
		logger.Warn("catalog notifications disabled", zap.Error(err))
		return notify.Nop{}
	}
	return p
}
