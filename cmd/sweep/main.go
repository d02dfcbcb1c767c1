// cmd/sweep/main.go
//
// One-shot integrity sweep.
//
// Scans active primary slugs, demotes duplicate primaries (keeping the
// newest per entity + language), and prints the repair report as JSON to
// stdout for operator review.  Run it from cron; the cadence is an
// operational choice, not a service concern.
//
// Usage:
//
//	sweep [-site <id>]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/veresdaniel/hellolocal/internal/config"
	"github.com/veresdaniel/hellolocal/internal/database"
	"github.com/veresdaniel/hellolocal/internal/logger"
	"github.com/veresdaniel/hellolocal/internal/slug"
)

func main() {
	siteID := flag.Uint64("site", 0, "limit the sweep to one site id")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(cfg.Paths.Root, true)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	var scope *slug.Scope
	if *siteID != 0 {
		scope = &slug.Scope{SiteID: *siteID}
	}

	report, err := slug.NewSweeper(db).Run(ctx, scope)
	if err != nil {
		logOut.Fatalf("sweep: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logOut.Fatalf("encode report: %v", err)
	}
}
