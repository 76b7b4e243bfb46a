// Command seed loads demo users, schedules and teams into the configured stores.
package main

import (
	"context"
	_ "embed"
	"flag"
	"log/slog"
	"os"

	"github.com/workflex/workflex/internal/app"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/config"
	"github.com/workflex/workflex/internal/seed"
)

//go:embed demo.yaml
var demo []byte

func main() {
	file := flag.String("file", "", "seed document to load (default: built-in demo data)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	data := demo
	if *file != "" {
		if data, err = os.ReadFile(*file); err != nil {
			slog.Error("failed to read seed document", "file", *file, "error", err)
			os.Exit(1)
		}
	}

	doc, err := seed.Parse(data)
	if err != nil {
		slog.Error("invalid seed document", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close(ctx)

	accounts := auth.NewService(stores.Users, auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry), cfg.BcryptCost)
	if _, err := seed.NewLoader(accounts, stores.Users, stores.Teams, stores.Schedules).Load(ctx, doc); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}
