package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/sitegrid/sitegrid/config"
	"github.com/sitegrid/sitegrid/internal/api/middleware"
	"github.com/sitegrid/sitegrid/internal/api/v1/handlers"
	"github.com/sitegrid/sitegrid/internal/api/v1/routes"
	"github.com/sitegrid/sitegrid/internal/cache"
	"github.com/sitegrid/sitegrid/internal/constants"
	"github.com/sitegrid/sitegrid/internal/db"
	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/db/repos"
	"github.com/sitegrid/sitegrid/internal/events"
	"github.com/sitegrid/sitegrid/internal/logger"
	"github.com/sitegrid/sitegrid/internal/records"
	"github.com/sitegrid/sitegrid/internal/services"
	"github.com/sitegrid/sitegrid/internal/types"
)

func main() {
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	database, err := db.New(db.Options{
		Host:     config.GetEnv(constants.EnvDBHost, ""),
		User:     config.GetEnv(constants.EnvDBUser, ""),
		Password: config.GetEnv(constants.EnvDBPassword, ""),
		DBName:   config.GetEnv(constants.EnvDBName, ""),
		Port:     config.GetEnvInt(constants.EnvDBPort, 0),
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bulkOpRepo := repos.NewBulkOperationRepository(database)
	cacheRepo := repos.NewCacheEntryRepository(database)
	recordStore := records.NewGormStore(database)

	events.Start(ctx)
	events.Subscribe(events.EventOperationCompleted, invalidateSmartFilters(cacheRepo))
	events.Subscribe(events.EventOperationFailed, invalidateSmartFilters(cacheRepo))
	go cacheJanitor(ctx, cacheRepo)

	executor := services.NewExecutor(ctx, bulkOpRepo, recordStore,
		config.GetEnvDuration(constants.EnvItemTimeout, services.DefaultItemTimeout))
	if err := executor.RecoverStale(ctx); err != nil {
		logger.Fatalf("Failed to recover stale bulk operations: %v", err)
	}

	bulkOpService := services.NewBulkOperationService(bulkOpRepo, executor)
	suggestionService := services.NewSuggestionService(
		cache.NewManager(cacheRepo), &services.StaticGenerator{})

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(middleware.Logger())
	routes.RegisterRoutes(app,
		handlers.NewBulkOperationHandler(bulkOpService),
		handlers.NewSuggestionHandler(suggestionService))

	go func() {
		addr := ":" + config.GetEnv(constants.EnvPort, routes.DefaultPort)
		logger.Infof("Starting server on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	executor.Wait()
	logger.Info("Shutdown complete")
}

// invalidateSmartFilters drops the cached smart filter set for the entity
// type a finished bulk operation mutated, so the next request regenerates it
// from the new record state
func invalidateSmartFilters(cacheRepo *repos.CacheEntryRepository) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		count, err := cacheRepo.DeleteForEntity(ctx, models.CacheKindSmartFilters, event.EntityType, event.CompanyID)
		if err != nil {
			return err
		}
		if count > 0 {
			logger.Debugf("Invalidated %d smart filter cache entries for %s after bulk operation %s",
				count, event.EntityType, event.OperationID)
		}
		return nil
	}
}

// cacheJanitor periodically removes expired cache rows. Reads already treat
// expired entries as misses; this only bounds table growth.
func cacheJanitor(ctx context.Context, cacheRepo *repos.CacheEntryRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := cacheRepo.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.Warnf("Cache cleanup failed: %v", err)
				continue
			}
			if count > 0 {
				logger.Debugf("Removed %d expired cache entries", count)
			}
		}
	}
}

// errorHandler maps unhandled errors to the response envelope without
// leaking internals
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	} else {
		logger.Errorf("Unhandled error: %v", err)
	}

	return c.Status(code).JSON(types.Response{
		Success: false,
		Error:   msg,
	})
}
