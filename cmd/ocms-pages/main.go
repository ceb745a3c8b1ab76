// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-pages/internal/config"
	"github.com/olegiv/ocms-pages/internal/demo"
	"github.com/olegiv/ocms-pages/internal/handler"
	"github.com/olegiv/ocms-pages/internal/handler/api"
	"github.com/olegiv/ocms-pages/internal/i18n"
	"github.com/olegiv/ocms-pages/internal/logging"
	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/session"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/store/redisstore"
	"github.com/olegiv/ocms-pages/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// requestTimeout bounds every request, uploads included.
const requestTimeout = 30 * time.Second

// pageStore is what the page manager and the health checks need from a
// page store backend.
type pageStore interface {
	service.PageStore
	Ping(ctx context.Context) error
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-pages - localized static pages service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH           SQLite database path (default: ./data/ocms-pages.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_UI_LANGUAGES      Comma-separated page languages (default: eng,fre,ger,spa)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_PAGE_STORE        Page store backend: sqlite|redis (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL         Redis URL for the redis page store\n")
	}

	flag.Parse()

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())
	slog.SetDefault(logger)

	langs, err := i18n.NewLanguages(cfg.UILanguages)
	if err != nil {
		return fmt.Errorf("configuring languages: %w", err)
	}
	slog.Info("page languages configured", "languages", langs.Codes())

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if cfg.DemoMode {
		if _, err := demo.ResetIfNeeded(cfg.DBPath, dbDir, time.Now()); err != nil {
			return fmt.Errorf("resetting demo data: %w", err)
		}
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	pages, closePages, err := openPageStore(cfg, db)
	if err != nil {
		return err
	}
	defer closePages()

	ctx := context.Background()
	if cfg.DoSeed || cfg.DemoMode {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	users := store.NewUsers(db)
	sessionManager := session.New(db, cfg.IsDevelopment())

	pageManager := service.NewPageManager(pages, langs, logger)
	pagesHandler := api.NewPagesHandler(pageManager, cfg.MaxUploadSize, logger)

	if cfg.DemoMode {
		if err := store.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo accounts: %w", err)
		}
		if err := pageManager.SeedDemo(ctx); err != nil {
			return fmt.Errorf("seeding demo pages: %w", err)
		}
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()
	authHandler := api.NewAuthHandler(users, sessionManager, loginProtection, logger)

	healthHandler := handler.NewHealthHandler(map[string]handler.PingFunc{
		"database":   db.PingContext,
		"page_store": pages.Ping,
	}, dbDir, info)

	apiRateLimiter := middleware.NewGlobalRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)
	defer apiRateLimiter.Stop()

	r := newRouter(routerDeps{
		sessions:        sessionManager,
		users:           users,
		pages:           pagesHandler,
		auth:            authHandler,
		health:          healthHandler,
		rateLimiter:     apiRateLimiter,
		loginProtection: loginProtection,
		csrfKey:         []byte(cfg.SessionSecret),
		isDev:           cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "page_store", cfg.PageStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openPageStore returns the configured page store backend and a function
// releasing it.
func openPageStore(cfg *config.Config, db *sql.DB) (pageStore, func(), error) {
	if !cfg.UseRedisStore() {
		slog.Info("page store initialized", "backend", config.PageStoreSQLite)
		return store.NewPageStore(db), func() {}, nil
	}

	opts := redisstore.DefaultOptions()
	opts.URL = cfg.RedisURL
	opts.Prefix = cfg.RedisPrefix

	rs, err := redisstore.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing redis page store: %w", err)
	}
	slog.Info("page store initialized", "backend", config.PageStoreRedis, "prefix", opts.Prefix)

	return rs, func() {
		if err := rs.Close(); err != nil {
			slog.Error("error closing redis connection", "error", err)
		}
	}, nil
}
