package main

import (
	"flag"
	"log"

	"quizhub_backend/internal/app"
	"quizhub_backend/internal/config"
	"quizhub_backend/pkg/configwatcher"
	"quizhub_backend/pkg/database"
)

// @title QuizHub API
// @version 1.0
// @description Backend service for timed multiple-choice quiz packages.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	if cfg.MigrateOnly {
		if _, err := database.InitDB(&cfg.Database); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration complete")
		return
	}

	application := app.NewApp(cfg)

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		if updated, ok := newCfg.(*config.Config); ok {
			updated.MigrateOnly = cfg.MigrateOnly
			*cfg = *updated
			log.Println("Configuration reloaded")
		}
	})

	application.Run()
}
