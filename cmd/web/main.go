// cmd/web/main.go
//
// HelloLocal resolution service – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (system-wide file → .env fallback).
//
//  2. Load and validate the layered configuration.
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Open the database pool, apply migrations when enabled, and log an
//     active-key count as an early sanity check.
//
//  5. Build the Key Resolver (with its TTL cache) and the Slug Resolver.
//
//  6. Mount the JSON resolve endpoints, /metrics, and /healthz behind the
//     security-header middleware, then serve with hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments
// use a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veresdaniel/hellolocal/internal/api"
	"github.com/veresdaniel/hellolocal/internal/config"
	"github.com/veresdaniel/hellolocal/internal/database"
	"github.com/veresdaniel/hellolocal/internal/logger"
	"github.com/veresdaniel/hellolocal/internal/middleware"
	"github.com/veresdaniel/hellolocal/internal/server"
	"github.com/veresdaniel/hellolocal/internal/sitekey"
	"github.com/veresdaniel/hellolocal/internal/slug"

	_ "github.com/veresdaniel/hellolocal/internal/metrics" // registers collectors
)

const serverEnvPath = "/usr/local/etc/hellolocal/global.env"

// loadEnv prefers the system-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Database connect + migrations ───────────────────────────────
	//
	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()
	logOut.Infow("database online")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.DSN); err != nil {
			logOut.Fatalf("migrate: %v", err)
		}
	}

	// Log active-key count as an early sanity check.
	var activeKeys int
	_ = db.Get(&activeKeys, `SELECT COUNT(*) FROM site_key WHERE is_active = TRUE`)
	logOut.Infow("site keys loaded", "active", activeKeys)

	//
	// ── 2.  Resolvers ───────────────────────────────────────────────────
	//
	keyResolver := sitekey.NewResolver(db, sitekey.Config{
		DefaultKey: cfg.Resolver.DefaultSiteKey,
	})
	keyCache := sitekey.NewCache(keyResolver, cfg.Resolver.KeyCacheTTL)
	slugResolver := slug.NewResolver(db)

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Mount("/", api.New(keyCache, slugResolver).Routes())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	//
	// ── 4.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}
