package main

import (
	"time"

	"taskflow-api/internal/config"
	"taskflow-api/internal/database"
	"taskflow-api/internal/entitlement"
	"taskflow-api/internal/logger"
	"taskflow-api/internal/notify"
	"taskflow-api/internal/routes"
	"taskflow-api/internal/service"
	"taskflow-api/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.New()
	defer log.Sync()

	// Init database
	database.InitDB(cfg.DBPath)
	db := database.GetDB()

	store, err := storage.NewDiskStore(cfg.StorageDir)
	if err != nil {
		log.Fatalw("failed to init file storage", "dir", cfg.StorageDir, "error", err)
	}

	svc := service.NewTaskService(db, store, notify.NewLogDispatcher(log), log)

	// Periodic trial-expiry sweep; idempotent, safe to rerun.
	go func() {
		ticker := time.NewTicker(cfg.TrialSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			users, orgs, err := entitlement.ExpireTrials(db, time.Now())
			if err != nil {
				log.Errorw("trial sweep failed", "error", err)
				continue
			}
			if users > 0 || orgs > 0 {
				log.Infow("trial sweep deactivated expired trials", "users", users, "orgs", orgs)
			}
		}
	}()

	ginRoutes := routes.SetupRoutes(routes.Deps{
		DB:        db,
		Svc:       svc,
		TrialDays: cfg.TrialDays,
	})

	addr := ":" + cfg.Port
	log.Infow("server starting", "addr", addr)
	if err := ginRoutes.Run(addr); err != nil {
		log.Fatalw("failed to start server", "error", err)
	}
}
