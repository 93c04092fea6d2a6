package main

import (
	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/handlers"
	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/internal/utils"
	"github.com/convoqa/backend/pkg/logger"
	"github.com/google/uuid"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	syncService *services.IntercomSyncService
	taskQueue   services.TaskQueue
	worker      *services.Worker
	authHandler *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	syncService := services.NewIntercomSyncService(models.GetDB(), &cfg.Intercom)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(syncService.Run)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(syncService.Run)
			worker.Start()
		}
	}

	// Start the cron-driven Intercom sync if configured
	syncService.StartSchedule(taskQueue, func() string { return uuid.New().String() })

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		syncService: syncService,
		taskQueue:   taskQueue,
		worker:      worker,
		authHandler: authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.syncService.StopSchedule()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
